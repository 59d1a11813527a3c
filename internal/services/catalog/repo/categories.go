package repo

import (
	"context"
	"encoding/json"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/store"
	"preloadassist/internal/services/catalog/domain"
)

var errNotFound = perr.ErrNotFound

const categoryCols = `id, name, slug, parent_id, product_count, canonical_url, enabled, settings, updated_at`

func scanCategory(r store.Row) (domain.Category, error) {
	var (
		c   domain.Category
		raw []byte
	)
	if err := r.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.ProductCount, &c.CanonicalURL, &c.Enabled, &raw, &c.UpdatedAt); err != nil {
		return c, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &c.Settings); err != nil {
			return c, err
		}
	}
	return c, nil
}

func (r *queries) UpsertCategory(ctx context.Context, in domain.CategoryInput) (bool, error) {
	// xmax = 0 only for freshly inserted tuples
	const sql = `
insert into preload_categories (id, name, slug, parent_id, product_count, canonical_url)
values ($1, $2, $3, $4, $5, $6)
on conflict (id) do update set
  name = excluded.name,
  slug = excluded.slug,
  parent_id = excluded.parent_id,
  product_count = excluded.product_count,
  canonical_url = excluded.canonical_url,
  updated_at = now()
returning (xmax = 0)
`
	return store.Scalar[bool](ctx, r.q, sql, in.ID, in.Name, in.Slug, in.ParentID, in.ProductCount, in.CanonicalURL)
}

func (r *queries) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return store.Many(ctx, r.q, scanCategory, `select `+categoryCols+` from preload_categories order by parent_id, name, id`)
}

func (r *queries) EnabledCategories(ctx context.Context, ids []int64) ([]domain.Category, error) {
	const sql = `
select ` + categoryCols + `
from preload_categories
where enabled
and (cardinality($1::bigint[]) = 0 or id = any($1::bigint[]))
order by parent_id, name, id
`
	return store.Many(ctx, r.q, scanCategory, sql, nonNilIDs(ids))
}

func (r *queries) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return store.One(ctx, r.q, scanCategory, `select `+categoryCols+` from preload_categories where id = $1`, id)
}

func (r *queries) SetCategoryEnabled(ctx context.Context, id int64, enabled bool) error {
	return affected(r.q.Exec(ctx, `update preload_categories set enabled = $2, updated_at = now() where id = $1`, id, enabled))
}

func (r *queries) SaveCategorySettings(ctx context.Context, id int64, s domain.CategorySettings) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return affected(r.q.Exec(ctx, `update preload_categories set settings = $2::jsonb, updated_at = now() where id = $1`, id, string(b)))
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

func nonNilNames(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
