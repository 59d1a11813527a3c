// Package service contains catalog workflows: taxonomy sync, facet import,
// per category selections, custom parameters and the settings store
package service

import (
	"context"
	"sort"

	"preloadassist/internal/core/urlbuild"
	"preloadassist/internal/modkit/repokit"
	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
	"preloadassist/internal/services/catalog/domain"
	"preloadassist/internal/services/catalog/repo"
)

// Service defines the service contract for the catalog
type Service interface{ domain.ServicePort }

// Options configures the catalog service
type Options struct {
	// SiteURL is the storefront base, used for categories without a canonical URL
	SiteURL string
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	opt    Options
}

var _ Service = (*Svc)(nil)

// New creates a new catalog service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("catalog.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("catalog.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, opt: opt}
}

// dbErr maps repo failures, keeping not found as is
func dbErr(err error, msg string) error {
	if err == nil || perr.IsCode(err, perr.ErrorCodeNotFound) {
		return err
	}
	return perr.FromPostgres(err, msg)
}

// SyncCategories upserts a taxonomy snapshot, keeping enabled flags and settings
func (s *Svc) SyncCategories(ctx context.Context, in []domain.CategoryInput) (domain.SyncResult, error) {
	res := domain.SyncResult{Total: len(in)}
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		for _, c := range in {
			inserted, err := r.UpsertCategory(ctx, c)
			if err != nil {
				return perr.WithField(dbErr(err, "sync category"), "categories")
			}
			if inserted {
				res.Inserted++
			} else {
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return domain.SyncResult{}, err
	}
	logger.C(ctx).Info().Int("inserted", res.Inserted).Int("updated", res.Updated).Msg("catalog: categories synced")
	return res, nil
}

// ListCategories returns every known category
func (s *Svc) ListCategories(ctx context.Context) ([]domain.Category, error) {
	out, err := s.Repo.ListCategories(ctx)
	return s.withURLs(out), dbErr(err, "list categories")
}

// Hierarchy returns categories depth-first from the roots with their depth
// Categories whose parent is unknown are treated as roots, so is anything caught in a parent cycle
func (s *Svc) Hierarchy(ctx context.Context) ([]domain.TreeItem, error) {
	all, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(all), nil
}

// BuildTree orders cats depth-first, siblings by name then id
func BuildTree(cats []domain.Category) []domain.TreeItem {
	known := make(map[int64]bool, len(cats))
	for _, c := range cats {
		known[c.ID] = true
	}
	children := make(map[int64][]domain.Category, len(cats))
	for _, c := range cats {
		parent := c.ParentID
		if !known[parent] || parent == c.ID {
			parent = 0
		}
		children[parent] = append(children[parent], c)
	}
	for _, kids := range children {
		sortByName(kids)
	}

	out := make([]domain.TreeItem, 0, len(cats))
	seen := make(map[int64]bool, len(cats))
	var walk func(parent int64, depth int)
	walk = func(parent int64, depth int) {
		for _, c := range children[parent] {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, domain.TreeItem{Category: c, Depth: depth})
			walk(c.ID, depth+1)
		}
	}
	walk(0, 0)

	// members of a parent cycle have no root, surface them as roots
	rest := make([]domain.Category, 0)
	for _, c := range cats {
		if !seen[c.ID] {
			rest = append(rest, c)
		}
	}
	sortByName(rest)
	for _, c := range rest {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, domain.TreeItem{Category: c, Depth: 0})
		walk(c.ID, 1)
	}
	return out
}

func sortByName(cs []domain.Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Name != cs[j].Name {
			return cs[i].Name < cs[j].Name
		}
		return cs[i].ID < cs[j].ID
	})
}

// SetCategoryEnabled flips a category on or off, settings are kept either way
func (s *Svc) SetCategoryEnabled(ctx context.Context, id int64, enabled bool) (domain.Category, error) {
	if err := s.Repo.SetCategoryEnabled(ctx, id, enabled); err != nil {
		return domain.Category{}, notFoundOr(err, "category %d not found", id)
	}
	return s.getCategory(ctx, id)
}

// SaveCategorySettings replaces the selected facets and parameters of a category
func (s *Svc) SaveCategorySettings(ctx context.Context, id int64, in domain.SettingsInput) (domain.Category, error) {
	cur, err := s.getCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	next := cur.Settings.WithSelection(uniq(in.SelectedFacets), uniq(in.SelectedParameters))
	if err := s.Repo.SaveCategorySettings(ctx, id, next); err != nil {
		return domain.Category{}, notFoundOr(err, "category %d not found", id)
	}
	cur.Settings = next
	return cur, nil
}

// CategoryURL returns the canonical URL or one derived from the site URL and slug
func (s *Svc) CategoryURL(ctx context.Context, id int64) (string, error) {
	c, err := s.getCategory(ctx, id)
	if err != nil {
		return "", err
	}
	return c.CanonicalURL, nil
}

// EnabledCategories returns enabled categories, restricted to ids when non-empty
func (s *Svc) EnabledCategories(ctx context.Context, ids []int64) ([]domain.Category, error) {
	out, err := s.Repo.EnabledCategories(ctx, ids)
	return s.withURLs(out), dbErr(err, "list enabled categories")
}

// SaveSetting stores a key/value setting
func (s *Svc) SaveSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return perr.Validationf("setting key is required")
	}
	return dbErr(s.Repo.SaveSetting(ctx, key, value), "save setting")
}

// GetSetting returns the stored value or def
func (s *Svc) GetSetting(ctx context.Context, key, def string) (string, error) {
	v, ok, err := s.Repo.GetSetting(ctx, key)
	if err != nil {
		return def, dbErr(err, "get setting")
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

func (s *Svc) getCategory(ctx context.Context, id int64) (domain.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, notFoundOr(err, "category %d not found", id)
	}
	return s.withURL(c), nil
}

func (s *Svc) withURL(c domain.Category) domain.Category {
	if c.CanonicalURL == "" && s.opt.SiteURL != "" {
		c.CanonicalURL = urlbuild.CategoryURL(s.opt.SiteURL, c.Slug)
	}
	return c
}

func (s *Svc) withURLs(cs []domain.Category) []domain.Category {
	for i := range cs {
		cs[i] = s.withURL(cs[i])
	}
	return cs
}

// notFoundOr rewrites a not found with a specific message and maps anything else as a db error
func notFoundOr(err error, format string, a ...any) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf(format, a...)
	}
	return dbErr(err, "catalog query")
}

// uniq trims, drops empties and repeats, keeping first occurrence order
func uniq(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
