package domain

import "context"

// Sources is the read side a generation run consumes
// Empty filters mean "all enabled"
type Sources interface {
	EnabledCategories(ctx context.Context, ids []int64) ([]Category, error)
	EnabledFacets(ctx context.Context, names []string) ([]Facet, error)
	// SelectedValues falls back to every facet value when the category saved no selection
	SelectedValues(ctx context.Context, categoryID int64, facet string) ([]string, error)
	EnabledParameters(ctx context.Context, names []string) ([]Parameter, error)
}

// SettingsPort is the key/value store other modules share
type SettingsPort interface {
	SaveSetting(ctx context.Context, key, value string) error
	GetSetting(ctx context.Context, key, def string) (string, error)
}

// ServicePort is the catalog admin surface
type ServicePort interface {
	Sources
	SettingsPort

	SyncCategories(ctx context.Context, in []CategoryInput) (SyncResult, error)
	ListCategories(ctx context.Context) ([]Category, error)
	Hierarchy(ctx context.Context) ([]TreeItem, error)
	SetCategoryEnabled(ctx context.Context, id int64, enabled bool) (Category, error)
	SaveCategorySettings(ctx context.Context, id int64, in SettingsInput) (Category, error)
	CategoryURL(ctx context.Context, id int64) (string, error)

	ImportFacets(ctx context.Context, raw []byte) (ImportResult, error)
	ListFacets(ctx context.Context) ([]Facet, error)
	SetFacetEnabled(ctx context.Context, name string, enabled bool) (Facet, error)
	SaveFacetValues(ctx context.Context, categoryID int64, facet string, selected []string) error
	FacetValuesWithStatus(ctx context.Context, categoryID int64, facet string) ([]FacetValue, error)

	SaveParameter(ctx context.Context, in ParameterInput) (Parameter, error)
	DeleteParameter(ctx context.Context, name string) error
	UpdateParameterPosition(ctx context.Context, name, position string) (Parameter, error)
	ListParameters(ctx context.Context) ([]Parameter, error)
}
