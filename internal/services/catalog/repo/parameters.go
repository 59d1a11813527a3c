package repo

import (
	"context"

	"preloadassist/internal/platform/store"
	"preloadassist/internal/services/catalog/domain"
)

const parameterCols = `name, vals, enabled, position, created_at`

func scanParameter(r store.Row) (domain.Parameter, error) {
	var (
		p   domain.Parameter
		pos string
	)
	if err := r.Scan(&p.Name, &p.Values, &p.Enabled, &pos, &p.CreatedAt); err != nil {
		return p, err
	}
	p.Position = domain.ParsePosition(pos)
	return p, nil
}

func (r *queries) UpsertParameter(ctx context.Context, p domain.Parameter) error {
	const sql = `
insert into preload_parameters (name, vals, enabled, position)
values ($1, $2, $3, $4)
on conflict (name) do update set
  vals = excluded.vals,
  enabled = excluded.enabled,
  position = excluded.position
`
	_, err := r.q.Exec(ctx, sql, p.Name, nonNilNames(p.Values), p.Enabled, string(p.Position))
	return err
}

// parameters keep creation order, which is their definition order in query strings
func (r *queries) ListParameters(ctx context.Context) ([]domain.Parameter, error) {
	return store.Many(ctx, r.q, scanParameter, `select `+parameterCols+` from preload_parameters order by created_at, name`)
}

func (r *queries) EnabledParameters(ctx context.Context, names []string) ([]domain.Parameter, error) {
	const sql = `
select ` + parameterCols + `
from preload_parameters
where enabled
and (cardinality($1::text[]) = 0 or name = any($1::text[]))
order by created_at, name
`
	return store.Many(ctx, r.q, scanParameter, sql, nonNilNames(names))
}

func (r *queries) GetParameter(ctx context.Context, name string) (domain.Parameter, error) {
	return store.One(ctx, r.q, scanParameter, `select `+parameterCols+` from preload_parameters where name = $1`, name)
}

func (r *queries) DeleteParameter(ctx context.Context, name string) error {
	return affected(r.q.Exec(ctx, `delete from preload_parameters where name = $1`, name))
}

func (r *queries) SetParameterPosition(ctx context.Context, name string, pos domain.Position) error {
	return affected(r.q.Exec(ctx, `update preload_parameters set position = $2 where name = $1`, name, string(pos)))
}
