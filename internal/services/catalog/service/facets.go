package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"preloadassist/internal/core/facetparam"
	"preloadassist/internal/core/textnorm"
	"preloadassist/internal/modkit/repokit"
	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
	"preloadassist/internal/services/catalog/domain"
)

// exportFacet is one facet entry of a faceted search export
type exportFacet struct {
	Name           string          `json:"name"`
	Label          string          `json:"label"`
	Type           string          `json:"type"`
	Source         string          `json:"source"`
	ModifierValues json.RawMessage `json:"modifier_values"`
}

// parseExport decodes an export and returns its facet entries
// Invalid JSON and a missing facets array are JSON errors
func parseExport(raw []byte) ([]exportFacet, error) {
	var doc struct {
		Facets *[]json.RawMessage `json:"facets"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, perr.JSONErrf("invalid JSON format: %v", err)
	}
	if doc.Facets == nil {
		return nil, perr.JSONErrf("invalid export format: a \"facets\" array is required")
	}
	out := make([]exportFacet, 0, len(*doc.Facets))
	for _, item := range *doc.Facets {
		var f exportFacet
		// entries that are not objects become empty facets and get skipped
		_ = json.Unmarshal(item, &f)
		out = append(out, f)
	}
	return out, nil
}

// modifierValues accepts a newline separated string or a string array
func modifierValues(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return textnorm.Lines(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return textnorm.Values(list)
	}
	return nil
}

// ImportFacets imports facet definitions from an export
// New facets start enabled, re-imported facets keep their enabled flag
func (s *Svc) ImportFacets(ctx context.Context, raw []byte) (domain.ImportResult, error) {
	entries, err := parseExport(raw)
	if err != nil {
		return domain.ImportResult{}, err
	}

	res := domain.ImportResult{Total: len(entries), Errors: []string{}}
	if err := s.Repo.SaveSetting(ctx, domain.SettingFacetExport, string(raw)); err != nil {
		return domain.ImportResult{}, dbErr(err, "save facet export")
	}

	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		typ := strings.TrimSpace(e.Type)
		if name == "" || typ == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("facet #%d skipped: missing name or type", i+1))
			continue
		}
		label := strings.TrimSpace(e.Label)
		if label == "" {
			label = name
		}
		f := domain.Facet{
			Name:    name,
			Label:   label,
			Type:    facetparam.ParseType(typ),
			Source:  e.Source,
			Enabled: true,
			Values:  modifierValues(e.ModifierValues),
		}
		if err := s.Repo.UpsertFacet(ctx, f); err != nil {
			logger.C(ctx).Warn().Err(err).Str("facet", name).Msg("catalog: facet import failed")
			res.Errors = append(res.Errors, fmt.Sprintf("failed to import facet %q", name))
			continue
		}
		res.Imported++
	}

	res.Status = domain.ImportSuccess
	if len(res.Errors) > 0 {
		res.Status = domain.ImportPartial
	}
	logger.C(ctx).Info().Int("imported", res.Imported).Int("total", res.Total).Msg("catalog: facets imported")
	return res, nil
}

// ListFacets returns every imported facet
func (s *Svc) ListFacets(ctx context.Context) ([]domain.Facet, error) {
	out, err := s.Repo.ListFacets(ctx)
	return out, dbErr(err, "list facets")
}

// EnabledFacets returns enabled facets, restricted to names when non-empty
func (s *Svc) EnabledFacets(ctx context.Context, names []string) ([]domain.Facet, error) {
	out, err := s.Repo.EnabledFacets(ctx, names)
	return out, dbErr(err, "list enabled facets")
}

// SetFacetEnabled flips a facet on or off
func (s *Svc) SetFacetEnabled(ctx context.Context, name string, enabled bool) (domain.Facet, error) {
	if err := s.Repo.SetFacetEnabled(ctx, name, enabled); err != nil {
		return domain.Facet{}, notFoundOr(err, "facet %q not found", name)
	}
	f, err := s.Repo.GetFacet(ctx, name)
	if err != nil {
		return domain.Facet{}, notFoundOr(err, "facet %q not found", name)
	}
	return f, nil
}

// SaveFacetValues stores which values of facet the category uses
// selected must be a subset of the facet's values
func (s *Svc) SaveFacetValues(ctx context.Context, categoryID int64, facet string, selected []string) error {
	return s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		if _, err := r.GetCategory(ctx, categoryID); err != nil {
			return notFoundOr(err, "category %d not found", categoryID)
		}
		f, err := r.GetFacet(ctx, facet)
		if err != nil {
			return notFoundOr(err, "facet %q not found", facet)
		}

		known := make(map[string]bool, len(f.Values))
		for _, v := range f.Values {
			known[v] = true
		}
		want := make(map[string]bool, len(selected))
		for _, v := range selected {
			if !known[v] {
				return perr.WithField(perr.Validationf("value %q is not a value of facet %q", v, facet), "selected")
			}
			want[v] = true
		}

		rows := make([]domain.FacetValue, 0, len(f.Values))
		for _, v := range f.Values {
			rows = append(rows, domain.FacetValue{Value: v, Selected: want[v]})
		}
		return dbErr(r.ReplaceFacetValues(ctx, categoryID, facet, rows), "save facet values")
	})
}

// FacetValuesWithStatus lists every value of facet with the category's selection
// Without a saved selection every value is selected
func (s *Svc) FacetValuesWithStatus(ctx context.Context, categoryID int64, facet string) ([]domain.FacetValue, error) {
	f, err := s.Repo.GetFacet(ctx, facet)
	if err != nil {
		return nil, notFoundOr(err, "facet %q not found", facet)
	}
	saved, ok, err := s.Repo.FacetValues(ctx, categoryID, facet)
	if err != nil {
		return nil, dbErr(err, "facet values")
	}
	flags := make(map[string]bool, len(saved))
	for _, v := range saved {
		flags[v.Value] = v.Selected
	}
	out := make([]domain.FacetValue, 0, len(f.Values))
	for _, v := range f.Values {
		sel := true
		if ok {
			sel = flags[v]
		}
		out = append(out, domain.FacetValue{Value: v, Selected: sel})
	}
	return out, nil
}

// SelectedValues returns the values the category enumerates for facet, in facet order
// Values dropped from the facet by a re-import are ignored
func (s *Svc) SelectedValues(ctx context.Context, categoryID int64, facet string) ([]string, error) {
	all, err := s.FacetValuesWithStatus(ctx, categoryID, facet)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(all))
	for _, v := range all {
		if v.Selected {
			out = append(out, v.Value)
		}
	}
	return out, nil
}
