package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the statement surface shared by the pool and pgx.Tx
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgQuerier narrows pgx results to the store seams
type pgQuerier struct{ q pgxQuerier }

func (p pgQuerier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	tag, err := p.q.Exec(ctx, sql, args...)
	return tag, err
}

func (p pgQuerier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := p.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgRows{rs}, nil
}

func (p pgQuerier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return p.q.QueryRow(ctx, sql, args...)
}

// pgAdapter is the TxRunner over a pool
type pgAdapter struct {
	pgQuerier
	pool *pgxpool.Pool
}

func newPGAdapter(pool *pgxpool.Pool) *pgAdapter {
	return &pgAdapter{pgQuerier: pgQuerier{pool}, pool: pool}
}

func (a *pgAdapter) Ping(ctx context.Context) error { return a.pool.Ping(ctx) }

func (a *pgAdapter) Close() error { a.pool.Close(); return nil }

func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return err
	}
	return runTx(ctx, tx, pgQuerier{tx}, fn)
}

type txControl interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// runTx returns fn's error untouched; the deferred rollback also covers a panic in fn
// and is a no-op after a successful commit
func runTx(ctx context.Context, tx txControl, q RowQuerier, fn func(q RowQuerier) error) error {
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()
	if err := fn(q); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgRows struct{ pgx.Rows }

func (r pgRows) Columns() []string {
	fds := r.FieldDescriptions()
	names := make([]string, 0, len(fds))
	for _, fd := range fds {
		names = append(names, fd.Name)
	}
	return names
}
