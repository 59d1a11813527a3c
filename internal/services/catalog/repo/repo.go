// Package repo provides postgres access for categories, facets, parameters and settings
package repo

import (
	"context"

	"preloadassist/internal/modkit/repokit"
	"preloadassist/internal/services/catalog/domain"
)

// Repo defines the repository contract for the catalog
type Repo interface {
	UpsertCategory(ctx context.Context, in domain.CategoryInput) (inserted bool, err error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	EnabledCategories(ctx context.Context, ids []int64) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
	SetCategoryEnabled(ctx context.Context, id int64, enabled bool) error
	SaveCategorySettings(ctx context.Context, id int64, s domain.CategorySettings) error

	// UpsertFacet writes definition and values; enabled only applies to new rows
	UpsertFacet(ctx context.Context, f domain.Facet) error
	ListFacets(ctx context.Context) ([]domain.Facet, error)
	EnabledFacets(ctx context.Context, names []string) ([]domain.Facet, error)
	GetFacet(ctx context.Context, name string) (domain.Facet, error)
	SetFacetEnabled(ctx context.Context, name string, enabled bool) error

	// ReplaceFacetValues stores every value of the facet with its selected flag
	ReplaceFacetValues(ctx context.Context, categoryID int64, facet string, values []domain.FacetValue) error
	// FacetValues returns the saved flags, saved is false when the category never saved a selection
	FacetValues(ctx context.Context, categoryID int64, facet string) (values []domain.FacetValue, saved bool, err error)

	UpsertParameter(ctx context.Context, p domain.Parameter) error
	ListParameters(ctx context.Context) ([]domain.Parameter, error)
	EnabledParameters(ctx context.Context, names []string) ([]domain.Parameter, error)
	GetParameter(ctx context.Context, name string) (domain.Parameter, error)
	DeleteParameter(ctx context.Context, name string) error
	SetParameterPosition(ctx context.Context, name string, pos domain.Position) error

	SaveSetting(ctx context.Context, key, value string) error
	// GetSetting reports ok=false for a missing key
	GetSetting(ctx context.Context, key string) (value string, ok bool, err error)
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// affected turns a zero row write into perr.ErrNotFound
func affected(tag repokit.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errNotFound
	}
	return nil
}
