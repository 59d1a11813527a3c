package service

import (
	"context"
	"strings"

	"preloadassist/internal/core/textnorm"
	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/services/catalog/domain"
)

// SaveParameter creates or replaces a parameter
// Enabled defaults to true and position to after
func (s *Svc) SaveParameter(ctx context.Context, in domain.ParameterInput) (domain.Parameter, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Parameter{}, perr.WithField(perr.Validationf("parameter name is required"), "name")
	}
	vals := textnorm.Values(in.Values)
	if len(vals) == 0 {
		return domain.Parameter{}, perr.WithField(perr.Validationf("parameter %q needs at least one value", name), "values")
	}
	p := domain.Parameter{
		Name:     name,
		Values:   vals,
		Enabled:  in.Enabled == nil || *in.Enabled,
		Position: domain.ParsePosition(in.Position),
	}
	if err := s.Repo.UpsertParameter(ctx, p); err != nil {
		return domain.Parameter{}, dbErr(err, "save parameter")
	}
	return s.getParameter(ctx, name)
}

// DeleteParameter removes a parameter
func (s *Svc) DeleteParameter(ctx context.Context, name string) error {
	if err := s.Repo.DeleteParameter(ctx, name); err != nil {
		return notFoundOr(err, "parameter %q not found", name)
	}
	return nil
}

// UpdateParameterPosition moves a parameter before or after the facets
func (s *Svc) UpdateParameterPosition(ctx context.Context, name, position string) (domain.Parameter, error) {
	if err := s.Repo.SetParameterPosition(ctx, name, domain.ParsePosition(position)); err != nil {
		return domain.Parameter{}, notFoundOr(err, "parameter %q not found", name)
	}
	return s.getParameter(ctx, name)
}

// ListParameters returns every parameter in definition order
func (s *Svc) ListParameters(ctx context.Context) ([]domain.Parameter, error) {
	out, err := s.Repo.ListParameters(ctx)
	return out, dbErr(err, "list parameters")
}

// EnabledParameters returns enabled parameters, restricted to names when non-empty
func (s *Svc) EnabledParameters(ctx context.Context, names []string) ([]domain.Parameter, error) {
	out, err := s.Repo.EnabledParameters(ctx, names)
	return out, dbErr(err, "list enabled parameters")
}

func (s *Svc) getParameter(ctx context.Context, name string) (domain.Parameter, error) {
	p, err := s.Repo.GetParameter(ctx, name)
	if err != nil {
		return domain.Parameter{}, notFoundOr(err, "parameter %q not found", name)
	}
	return p, nil
}
