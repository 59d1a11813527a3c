package store

import (
	"context"
	"errors"

	perr "preloadassist/internal/platform/errors"
)

// errTooMany is returned by One when the query matches several rows
var errTooMany = errors.New("store: query returned more than one row")

// each runs sql and hands every row to fn, closing the result set
func each(ctx context.Context, q RowQuerier, sql string, args []any, fn func(Row) (bool, error)) error {
	rs, err := q.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rs.Close()
	for rs.Next() {
		more, err := fn(rs)
		if err != nil || !more {
			return err
		}
	}
	return rs.Err()
}

// One scans exactly one row; none is perr.ErrNotFound
func One[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) (T, error) {
	var (
		out  T
		seen int
	)
	err := each(ctx, q, sql, args, func(r Row) (bool, error) {
		seen++
		if seen > 1 {
			return false, errTooMany
		}
		v, err := scan(r)
		out = v
		return true, err
	})
	switch {
	case err != nil:
		var zero T
		return zero, err
	case seen == 0:
		return out, perr.ErrNotFound
	}
	return out, nil
}

// Many scans every row; an empty result is a non-nil empty slice
func Many[T any](ctx context.Context, q RowQuerier, scan func(Row) (T, error), sql string, args ...any) ([]T, error) {
	out := []T{}
	err := each(ctx, q, sql, args, func(r Row) (bool, error) {
		v, err := scan(r)
		if err == nil {
			out = append(out, v)
		}
		return true, err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Scalar scans the single column of a one-row result, e.g. a returning clause
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	var v T
	err := q.QueryRow(ctx, sql, args...).Scan(&v)
	return v, err
}
