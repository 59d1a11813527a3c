package service

import (
	"context"
	"fmt"
	"sort"

	"preloadassist/internal/modkit/repokit"
	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/store"
	"preloadassist/internal/services/catalog/domain"
	"preloadassist/internal/services/catalog/repo"
)

// memRepo is an in memory repo.Repo
type memRepo struct {
	cats     map[int64]domain.Category
	facets   map[string]domain.Facet
	vals     map[string][]domain.FacetValue
	params   map[string]domain.Parameter
	order    []string
	settings map[string]string

	failFacet string
}

func newMemRepo() *memRepo {
	return &memRepo{
		cats:     map[int64]domain.Category{},
		facets:   map[string]domain.Facet{},
		vals:     map[string][]domain.FacetValue{},
		params:   map[string]domain.Parameter{},
		settings: map[string]string{},
	}
}

var _ repo.Repo = (*memRepo)(nil)

func valKey(id int64, facet string) string { return fmt.Sprintf("%d/%s", id, facet) }

func (m *memRepo) UpsertCategory(_ context.Context, in domain.CategoryInput) (bool, error) {
	c, ok := m.cats[in.ID]
	if !ok {
		c = domain.Category{ID: in.ID, Enabled: false}
	}
	c.Name, c.Slug, c.ParentID, c.ProductCount, c.CanonicalURL = in.Name, in.Slug, in.ParentID, in.ProductCount, in.CanonicalURL
	m.cats[in.ID] = c
	return !ok, nil
}

func (m *memRepo) sortedCats(keep func(domain.Category) bool) []domain.Category {
	out := []domain.Category{}
	for _, c := range m.cats {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memRepo) ListCategories(context.Context) ([]domain.Category, error) {
	return m.sortedCats(func(domain.Category) bool { return true }), nil
}

func (m *memRepo) EnabledCategories(_ context.Context, ids []int64) ([]domain.Category, error) {
	want := map[int64]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return m.sortedCats(func(c domain.Category) bool { return c.Enabled && (len(ids) == 0 || want[c.ID]) }), nil
}

func (m *memRepo) GetCategory(_ context.Context, id int64) (domain.Category, error) {
	c, ok := m.cats[id]
	if !ok {
		return c, perr.ErrNotFound
	}
	return c, nil
}

func (m *memRepo) SetCategoryEnabled(_ context.Context, id int64, enabled bool) error {
	c, ok := m.cats[id]
	if !ok {
		return perr.ErrNotFound
	}
	c.Enabled = enabled
	m.cats[id] = c
	return nil
}

func (m *memRepo) SaveCategorySettings(_ context.Context, id int64, s domain.CategorySettings) error {
	c, ok := m.cats[id]
	if !ok {
		return perr.ErrNotFound
	}
	c.Settings = s
	m.cats[id] = c
	return nil
}

func (m *memRepo) UpsertFacet(_ context.Context, f domain.Facet) error {
	if f.Name == m.failFacet {
		return perr.DBf("boom")
	}
	if cur, ok := m.facets[f.Name]; ok {
		f.Enabled = cur.Enabled
	}
	m.facets[f.Name] = f
	return nil
}

func (m *memRepo) facetList(keep func(domain.Facet) bool) []domain.Facet {
	out := []domain.Facet{}
	for _, f := range m.facets {
		if keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *memRepo) ListFacets(context.Context) ([]domain.Facet, error) {
	return m.facetList(func(domain.Facet) bool { return true }), nil
}

func (m *memRepo) EnabledFacets(_ context.Context, names []string) ([]domain.Facet, error) {
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	return m.facetList(func(f domain.Facet) bool { return f.Enabled && (len(names) == 0 || want[f.Name]) }), nil
}

func (m *memRepo) GetFacet(_ context.Context, name string) (domain.Facet, error) {
	f, ok := m.facets[name]
	if !ok {
		return f, perr.ErrNotFound
	}
	return f, nil
}

func (m *memRepo) SetFacetEnabled(_ context.Context, name string, enabled bool) error {
	f, ok := m.facets[name]
	if !ok {
		return perr.ErrNotFound
	}
	f.Enabled = enabled
	m.facets[name] = f
	return nil
}

func (m *memRepo) ReplaceFacetValues(_ context.Context, id int64, facet string, values []domain.FacetValue) error {
	m.vals[valKey(id, facet)] = append([]domain.FacetValue(nil), values...)
	return nil
}

func (m *memRepo) FacetValues(_ context.Context, id int64, facet string) ([]domain.FacetValue, bool, error) {
	v, ok := m.vals[valKey(id, facet)]
	return v, ok && len(v) > 0, nil
}

func (m *memRepo) UpsertParameter(_ context.Context, p domain.Parameter) error {
	if _, ok := m.params[p.Name]; !ok {
		m.order = append(m.order, p.Name)
	}
	m.params[p.Name] = p
	return nil
}

func (m *memRepo) paramList(keep func(domain.Parameter) bool) []domain.Parameter {
	out := []domain.Parameter{}
	for _, n := range m.order {
		if p, ok := m.params[n]; ok && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (m *memRepo) ListParameters(context.Context) ([]domain.Parameter, error) {
	return m.paramList(func(domain.Parameter) bool { return true }), nil
}

func (m *memRepo) EnabledParameters(_ context.Context, names []string) ([]domain.Parameter, error) {
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	return m.paramList(func(p domain.Parameter) bool { return p.Enabled && (len(names) == 0 || want[p.Name]) }), nil
}

func (m *memRepo) GetParameter(_ context.Context, name string) (domain.Parameter, error) {
	p, ok := m.params[name]
	if !ok {
		return p, perr.ErrNotFound
	}
	return p, nil
}

func (m *memRepo) DeleteParameter(_ context.Context, name string) error {
	if _, ok := m.params[name]; !ok {
		return perr.ErrNotFound
	}
	delete(m.params, name)
	return nil
}

func (m *memRepo) SetParameterPosition(_ context.Context, name string, pos domain.Position) error {
	p, ok := m.params[name]
	if !ok {
		return perr.ErrNotFound
	}
	p.Position = pos
	m.params[name] = p
	return nil
}

func (m *memRepo) SaveSetting(_ context.Context, key, value string) error {
	m.settings[key] = value
	return nil
}

func (m *memRepo) GetSetting(_ context.Context, key string) (string, bool, error) {
	v, ok := m.settings[key]
	return v, ok, nil
}

// fakeTx runs Tx bodies inline and counts them
type fakeTx struct{ txs int }

func (f *fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }

func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }

func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row { return nil }

func (f *fakeTx) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	f.txs++
	return fn(f)
}

func newSvc(opt Options) (*Svc, *memRepo, *fakeTx) {
	m := newMemRepo()
	tx := &fakeTx{}
	b := repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return m })
	return New(tx, b, opt), m, tx
}
