package service

import (
	"context"
	"strings"

	"preloadassist/internal/core/facetparam"
	"preloadassist/internal/core/permute"
	"preloadassist/internal/core/urlbuild"
	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
	catdom "preloadassist/internal/services/catalog/domain"
	"preloadassist/internal/services/generate/domain"
)

// axisRef maps a permute axis back to the facet or parameter it came from
type axisRef struct {
	facet *facetparam.Facet // nil for parameters
	name  string
	pos   catdom.Position
}

// runPlan is the immutable snapshot one run enumerates
type runPlan struct {
	slots []permute.Slot
	refs  []axisRef

	facets, before, after []string
}

// url assembles the line for t; not safe for concurrent use
func (p *runPlan) url(sl permute.Slot, t permute.Tuple) string {
	p.facets, p.before, p.after = p.facets[:0], p.before[:0], p.after[:0]
	for a, pick := range t.Picks {
		if pick == permute.Omit {
			continue
		}
		ax := sl.Axes[a]
		ref := p.refs[ax.Ref]
		v := ax.Values[pick]
		switch {
		case ref.facet != nil:
			p.facets = append(p.facets, facetparam.Encode(*ref.facet, v))
		case ref.pos == catdom.PositionBefore:
			p.before = append(p.before, facetparam.Param(ref.name, v))
		default:
			p.after = append(p.after, facetparam.Param(ref.name, v))
		}
	}
	return urlbuild.Assemble(sl.Base, p.facets, p.before, p.after)
}

// plan resolves the request against the catalog into a slot list
// Categories become one slot each; with no category the site base is the only slot
func (s *Svc) plan(ctx context.Context, req domain.Request) (*runPlan, error) {
	cats, err := s.src.EnabledCategories(ctx, req.Categories)
	if err != nil {
		return nil, err
	}
	facets, err := s.src.EnabledFacets(ctx, req.Facets)
	if err != nil {
		return nil, err
	}
	params, err := s.src.EnabledParameters(ctx, req.Parameters)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 && len(facets) == 0 && len(params) == 0 && !req.IncludeEmpty {
		return nil, domain.ErrNothingToGenerate
	}

	p := &runPlan{refs: make([]axisRef, 0, len(facets)+len(params))}
	for i := range facets {
		f := facets[i].Encoder()
		p.refs = append(p.refs, axisRef{facet: &f, name: f.Name})
	}
	for _, pr := range params {
		p.refs = append(p.refs, axisRef{name: pr.Name, pos: pr.Position})
	}

	log := logger.C(ctx)
	if len(cats) == 0 {
		if s.opt.SiteURL == "" {
			return nil, perr.Validationf("site url is not configured")
		}
		axes, err := s.axes(ctx, nil, facets, params, req.AllowPartial)
		if err != nil {
			return nil, err
		}
		p.slots = append(p.slots, permute.Slot{Base: urlbuild.SiteURL(s.opt.SiteURL), Axes: axes})
		return p, nil
	}

	seen := make(map[string]struct{}, len(cats))
	for i := range cats {
		c := &cats[i]
		base := c.CanonicalURL
		if base == "" {
			if s.opt.SiteURL == "" {
				log.Warn().Int64("category_id", c.ID).Msg("category has no url and no site url is configured, skipped")
				continue
			}
			base = urlbuild.CategoryURL(s.opt.SiteURL, c.Slug)
		}
		if _, dup := seen[base]; dup {
			log.Debug().Int64("category_id", c.ID).Str("base", base).Msg("duplicate category url skipped")
			continue
		}
		seen[base] = struct{}{}

		axes, err := s.axes(ctx, c, facets, params, req.AllowPartial)
		if err != nil {
			return nil, err
		}
		p.slots = append(p.slots, permute.Slot{Base: base, Axes: axes})
	}
	if len(p.slots) == 0 {
		return nil, perr.Validationf("no category url could be resolved")
	}
	return p, nil
}

// axes lists the facet then parameter axes for one slot
// A category's saved selection narrows the enabled set, an empty saved selection leaves only the base
// Only a category that never saved a selection takes every enabled item
// An item whose query keys collide with an earlier axis is left out
func (s *Svc) axes(ctx context.Context, c *catdom.Category, facets []catdom.Facet, params []catdom.Parameter, optional bool) ([]permute.Axis, error) {
	var wantF, wantP map[string]struct{}
	if c != nil && c.Settings.Saved() {
		wantF = nameSet(c.Settings.SelectedFacets)
		wantP = nameSet(c.Settings.SelectedParameters)
	}

	axes := make([]permute.Axis, 0, len(facets)+len(params))
	keys := make(map[string]struct{}, len(facets))
	var levels []string
	for i, f := range facets {
		if !allowed(wantF, f.Name) {
			continue
		}
		level := ""
		if f.Type == facetparam.TypeHierarchy {
			level = f.Name + "_level_"
		}
		if collides(keys, levels, f.Name, level) {
			logger.C(ctx).Warn().Str("facet", f.Name).Msg("facet query keys collide with an earlier facet, skipped")
			continue
		}
		vals := f.Values
		if c != nil {
			var err error
			if vals, err = s.src.SelectedValues(ctx, c.ID, f.Name); err != nil {
				return nil, err
			}
		}
		if vals = distinctEncoded(f.Encoder(), vals); len(vals) == 0 {
			continue
		}
		axes = append(axes, permute.Axis{Name: "f:" + f.Name, Values: vals, Optional: optional, Ref: i})
		keys[f.Name] = struct{}{}
		if level != "" {
			levels = append(levels, level)
		}
	}
	for j, pr := range params {
		if !allowed(wantP, pr.Name) || collides(keys, levels, pr.Name, "") {
			continue
		}
		axes = append(axes, permute.Axis{Name: "p:" + pr.Name, Values: pr.Values, Optional: optional, Ref: len(facets) + j})
	}
	return axes, nil
}

// distinctEncoded drops values whose fragment repeats an earlier one, e.g. ranges past max
func distinctEncoded(f facetparam.Facet, vals []string) []string {
	out := make([]string, 0, len(vals))
	seen := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		frag := facetparam.Encode(f, v)
		if _, dup := seen[frag]; dup {
			continue
		}
		seen[frag] = struct{}{}
		out = append(out, v)
	}
	return out
}

// nameSet is never nil so an empty selection allows nothing
func nameSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

func allowed(want map[string]struct{}, name string) bool {
	if want == nil {
		return true
	}
	_, ok := want[name]
	return ok
}

// collides reports whether name, or the level keys under level, overlap keys already taken
func collides(keys map[string]struct{}, levels []string, name, level string) bool {
	if _, ok := keys[name]; ok {
		return true
	}
	for _, l := range levels {
		if strings.HasPrefix(name, l) {
			return true
		}
	}
	if level == "" {
		return false
	}
	for k := range keys {
		if strings.HasPrefix(k, level) {
			return true
		}
	}
	for _, l := range levels {
		if strings.HasPrefix(l, level) || strings.HasPrefix(level, l) {
			return true
		}
	}
	return false
}
