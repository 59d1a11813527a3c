package store

import (
	"context"
	"fmt"

	"preloadassist/internal/platform/store/ch"
)

// ErrCHInsertShape is returned when Insert gets anything but [][]any or []any
var ErrCHInsertShape = fmt.Errorf("store: clickhouse insert wants []any or [][]any")

// chStore exposes *ch.CH as Clickhouse, normalizing insert shapes and result sets
type chStore struct{ *ch.CH }

var _ Clickhouse = chStore{}

func (c chStore) Insert(ctx context.Context, table string, data any) error {
	var batch [][]any
	switch v := data.(type) {
	case []any:
		batch = [][]any{v}
	case [][]any:
		batch = v
	default:
		return fmt.Errorf("%w, got %T", ErrCHInsertShape, data)
	}
	return c.CH.Insert(ctx, table, batch)
}

func (c chStore) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := c.CH.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{rs}, nil
}

// chRows drops the Close error to fit Rows
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
