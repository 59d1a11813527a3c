package repo

import (
	"context"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/store"
)

func (r *queries) SaveSetting(ctx context.Context, key, value string) error {
	const sql = `
insert into preload_settings (key, value) values ($1, $2)
on conflict (key) do update set value = excluded.value, updated_at = now()
`
	_, err := r.q.Exec(ctx, sql, key, value)
	return err
}

func (r *queries) GetSetting(ctx context.Context, key string) (string, bool, error) {
	v, err := store.One(ctx, r.q, func(row store.Row) (string, error) {
		var s string
		err := row.Scan(&s)
		return s, err
	}, `select value from preload_settings where key = $1`, key)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
