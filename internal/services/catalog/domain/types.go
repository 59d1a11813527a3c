// Package domain holds catalog types shared by the repo, service and http layers
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"preloadassist/internal/core/facetparam"
)

// Position places a parameter before or after the facet fragments in a query string
type Position string

// Parameter positions
const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
)

// ParsePosition maps anything but "before" to PositionAfter
func ParsePosition(s string) Position {
	if strings.EqualFold(strings.TrimSpace(s), string(PositionBefore)) {
		return PositionBefore
	}
	return PositionAfter
}

// Import statuses
const (
	ImportSuccess = "success"
	ImportPartial = "partial"
)

// SettingFacetExport keeps the last raw facet export for reference
const SettingFacetExport = "facet_export"

// CategorySettings is the per category enumeration scope
// Keys other than the two recognized ones are kept opaque and written back untouched
// A selection counts as saved once either list key was stored, even when both are empty
type CategorySettings struct {
	SelectedFacets     []string `json:"selected_facets"`
	SelectedParameters []string `json:"selected_parameters"`

	saved bool
	extra map[string]json.RawMessage
}

// Saved reports whether an admin ever stored a selection for the category
func (s CategorySettings) Saved() bool {
	return s.saved || s.SelectedFacets != nil || s.SelectedParameters != nil
}

// UnmarshalJSON reads the recognized keys and stashes the rest
func (s *CategorySettings) UnmarshalJSON(b []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	*s = CategorySettings{}
	for k, v := range all {
		switch k {
		case "selected_facets":
			s.saved = true
			if err := json.Unmarshal(v, &s.SelectedFacets); err != nil {
				return err
			}
		case "selected_parameters":
			s.saved = true
			if err := json.Unmarshal(v, &s.SelectedParameters); err != nil {
				return err
			}
		default:
			if s.extra == nil {
				s.extra = map[string]json.RawMessage{}
			}
			s.extra[k] = v
		}
	}
	return nil
}

// MarshalJSON writes the recognized keys plus any preserved unknown ones
func (s CategorySettings) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.extra)+2)
	for k, v := range s.extra {
		out[k] = v
	}
	if s.Saved() {
		out["selected_facets"] = nonNil(s.SelectedFacets)
		out["selected_parameters"] = nonNil(s.SelectedParameters)
	}
	return json.Marshal(out)
}

// WithSelection returns a copy with new selections and the same opaque keys
func (s CategorySettings) WithSelection(facets, params []string) CategorySettings {
	s.SelectedFacets = facets
	s.SelectedParameters = params
	s.saved = true
	return s
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

// Category is a storefront category as synced from the shop taxonomy
type Category struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Slug         string           `json:"slug"`
	ParentID     int64            `json:"parent_id"`
	ProductCount int              `json:"product_count"`
	CanonicalURL string           `json:"canonical_url"`
	Enabled      bool             `json:"enabled"`
	Settings     CategorySettings `json:"settings"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TreeItem is one category in depth-first order with its depth from the root
type TreeItem struct {
	Category
	Depth int `json:"depth"`
}

// CategoryInput is one discovered category in a sync
type CategoryInput struct {
	ID           int64  `json:"id" validate:"required,min=1" example:"15"`
	Name         string `json:"name" validate:"required,max=200" example:"Shoes"`
	Slug         string `json:"slug" validate:"required,max=200" example:"shoes"`
	ParentID     int64  `json:"parent_id" validate:"min=0" example:"0"`
	ProductCount int    `json:"product_count" validate:"min=0" example:"120"`
	CanonicalURL string `json:"canonical_url,omitempty" validate:"omitempty,httpurl" example:"https://shop.test/shoes/"`
}

// SyncInput carries a full taxonomy snapshot
type SyncInput struct {
	Categories []CategoryInput `json:"categories" validate:"required,min=1,dive"`
}

// SyncResult reports what a sync changed
type SyncResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}

// ToggleInput flips an enabled flag
type ToggleInput struct {
	Enabled bool `json:"enabled" example:"true"`
}

// SettingsInput replaces a category's selections
type SettingsInput struct {
	SelectedFacets     []string `json:"selected_facets" validate:"omitempty,dive,required"`
	SelectedParameters []string `json:"selected_parameters" validate:"omitempty,dive,required"`
}

// Facet is an imported faceted search filter
type Facet struct {
	Name      string          `json:"name"`
	Label     string          `json:"label"`
	Type      facetparam.Type `json:"type"`
	Source    string          `json:"source"`
	Enabled   bool            `json:"enabled"`
	Values    []string        `json:"values"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Encoder returns the view of f the fragment encoder needs
func (f Facet) Encoder() facetparam.Facet {
	return facetparam.Facet{Name: f.Name, Type: f.Type}
}

// FacetValue is one facet value and whether a category selected it
type FacetValue struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// FacetValuesInput is the set of selected values for one category and facet
type FacetValuesInput struct {
	Selected []string `json:"selected" validate:"omitempty,dive,required"`
}

// ImportResult reports a facet import
type ImportResult struct {
	Status   string   `json:"status" example:"success"`
	Imported int      `json:"imported" example:"4"`
	Total    int      `json:"total" example:"4"`
	Errors   []string `json:"errors"`
}

// Parameter is a custom query parameter enumerated alongside facets
type Parameter struct {
	Name      string    `json:"name"`
	Values    []string  `json:"values"`
	Enabled   bool      `json:"enabled"`
	Position  Position  `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// ParameterInput creates or replaces a parameter
type ParameterInput struct {
	Name     string   `json:"name" validate:"required,max=100,qkey" example:"sort"`
	Values   []string `json:"values" validate:"required,min=1,dive,required" example:"price-asc"`
	Enabled  *bool    `json:"enabled,omitempty" example:"true"`
	Position string   `json:"position,omitempty" validate:"omitempty,oneof=before after" example:"after"`
}

// PositionInput moves a parameter; anything but "before" means after
type PositionInput struct {
	Position string `json:"position" example:"before"`
}
