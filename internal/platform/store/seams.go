package store

import "context"

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result set; Close must be called once iteration stops
type Rows interface {
	Row
	Next() bool
	Err() error
	Close()
	Columns() []string
}

// CommandTag reports what an Exec did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier runs statements against postgres, inside or outside a transaction
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also open a transaction
// Tx commits when fn returns nil and rolls back otherwise
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar seam used for run history
// Insert takes one row as []any or a batch as [][]any
type Clickhouse interface {
	Insert(ctx context.Context, table string, data any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}
