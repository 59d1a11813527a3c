package migrate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"preloadassist/internal/platform/store"
)

type recTx struct {
	sqls []string
	fail string
}

func (r *recTx) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	r.sqls = append(r.sqls, sql)
	if r.fail != "" && strings.Contains(sql, r.fail) {
		return nil, errors.New("boom")
	}
	return nil, nil
}

func (r *recTx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (r *recTx) QueryRow(context.Context, string, ...any) store.Row         { return nil }

func (r *recTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error { return fn(r) }

func TestFiles_Ordered(t *testing.T) {
	names := Files()
	if len(names) < 2 {
		t.Fatalf("expected embedded migrations, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("not sorted: %v", names)
		}
	}
}

func TestApply_LocksThenRunsAll(t *testing.T) {
	tx := &recTx{}
	if err := Apply(context.Background(), tx); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(tx.sqls) != len(Files())+1 {
		t.Fatalf("exec count = %d", len(tx.sqls))
	}
	if !strings.Contains(tx.sqls[0], "pg_advisory_xact_lock") {
		t.Fatalf("first statement should take the lock: %q", tx.sqls[0])
	}
	if !strings.Contains(strings.Join(tx.sqls, "\n"), "preload_files_one_selected") {
		t.Fatalf("files schema missing")
	}
}

func TestApply_StopsOnError(t *testing.T) {
	tx := &recTx{fail: "preload_categories"}
	err := Apply(context.Background(), tx)
	if err == nil || !strings.Contains(err.Error(), "0001_catalog.sql") {
		t.Fatalf("expected failing file in error, got %v", err)
	}
	if len(tx.sqls) != 2 {
		t.Fatalf("should stop after the failing file, ran %d", len(tx.sqls))
	}
}
