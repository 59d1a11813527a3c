package repo

import (
	"context"

	"preloadassist/internal/core/facetparam"
	"preloadassist/internal/platform/store"
	"preloadassist/internal/services/catalog/domain"
)

const facetCols = `name, label, type, source, enabled, vals, updated_at`

func scanFacet(r store.Row) (domain.Facet, error) {
	var (
		f  domain.Facet
		tp string
	)
	if err := r.Scan(&f.Name, &f.Label, &tp, &f.Source, &f.Enabled, &f.Values, &f.UpdatedAt); err != nil {
		return f, err
	}
	f.Type = facetparam.ParseType(tp)
	return f, nil
}

func (r *queries) UpsertFacet(ctx context.Context, f domain.Facet) error {
	const sql = `
insert into preload_facets (name, label, type, source, enabled, vals)
values ($1, $2, $3, $4, $5, $6)
on conflict (name) do update set
  label = excluded.label,
  type = excluded.type,
  source = excluded.source,
  vals = excluded.vals,
  updated_at = now()
`
	_, err := r.q.Exec(ctx, sql, f.Name, f.Label, string(f.Type), f.Source, f.Enabled, nonNilNames(f.Values))
	return err
}

func (r *queries) ListFacets(ctx context.Context) ([]domain.Facet, error) {
	return store.Many(ctx, r.q, scanFacet, `select `+facetCols+` from preload_facets order by name`)
}

func (r *queries) EnabledFacets(ctx context.Context, names []string) ([]domain.Facet, error) {
	const sql = `
select ` + facetCols + `
from preload_facets
where enabled
and (cardinality($1::text[]) = 0 or name = any($1::text[]))
order by name
`
	return store.Many(ctx, r.q, scanFacet, sql, nonNilNames(names))
}

func (r *queries) GetFacet(ctx context.Context, name string) (domain.Facet, error) {
	return store.One(ctx, r.q, scanFacet, `select `+facetCols+` from preload_facets where name = $1`, name)
}

func (r *queries) SetFacetEnabled(ctx context.Context, name string, enabled bool) error {
	return affected(r.q.Exec(ctx, `update preload_facets set enabled = $2, updated_at = now() where name = $1`, name, enabled))
}

func (r *queries) ReplaceFacetValues(ctx context.Context, categoryID int64, facet string, values []domain.FacetValue) error {
	if _, err := r.q.Exec(ctx, `delete from preload_facet_values where category_id = $1 and facet_name = $2`, categoryID, facet); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	vals := make([]string, len(values))
	sel := make([]bool, len(values))
	for i, v := range values {
		vals[i], sel[i] = v.Value, v.Selected
	}
	const sql = `
insert into preload_facet_values (category_id, facet_name, value, selected)
select $1, $2, v, s from unnest($3::text[], $4::boolean[]) as t(v, s)
`
	_, err := r.q.Exec(ctx, sql, categoryID, facet, vals, sel)
	return err
}

func (r *queries) FacetValues(ctx context.Context, categoryID int64, facet string) ([]domain.FacetValue, bool, error) {
	const sql = `
select value, selected from preload_facet_values
where category_id = $1 and facet_name = $2
order by value
`
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.FacetValue, error) {
		var v domain.FacetValue
		err := row.Scan(&v.Value, &v.Selected)
		return v, err
	}, sql, categoryID, facet)
	if err != nil {
		return nil, false, err
	}
	return out, len(out) > 0, nil
}
