// Package module mounts the meta endpoints
package module

import (
	"context"
	"net/http"
	"time"

	"preloadassist/internal/core/version"
	modkit "preloadassist/internal/modkit"
	"preloadassist/internal/modkit/httpkit"
	kitmodule "preloadassist/internal/modkit/module"
	str "preloadassist/internal/platform/strings"

	metahttp "preloadassist/internal/services/api/meta/http"
	genmod "preloadassist/internal/services/generate/module"
)

// Requires lists optional probes beyond the shared stores
type Requires struct {
	Artifacts interface{ Ping(context.Context) error }
}

// Module implements the modkit.Module interface
type Module struct {
	name      string
	prefix    string
	mws       []func(http.Handler) http.Handler
	startedAt time.Time

	register func(httpkit.Router)
}

// New constructs the meta module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	m := &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, startedAt: time.Now()}

	req, _ := b.Ports.(Requires)
	gen := genmod.FromConfig(deps.Cfg)
	d := metahttp.Deps{
		ServiceName: version.Info().Service,
		StartedAt:   m.startedAt,
		Checks:      checks(deps, req),
		Timeout:     deps.Cfg.Prefix("CORE_API_").MayDuration("READY_TIMEOUT", 2*time.Second),
		Modules:     kitmodule.Names,
		SiteURL:     gen.SiteURL,
		MaxURLs:     gen.MaxURLs,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, d)
		if external != nil {
			external(r)
		}
	}
	return m
}

// checks builds the readiness probes; clickhouse only backs run history so it is optional
func checks(deps modkit.Deps, req Requires) []metahttp.Check {
	out := []metahttp.Check{
		{Name: "pg", Target: deps.PG},
		{Name: "ch", Target: deps.CH, Optional: true},
	}
	if req.Artifacts != nil {
		out = append(out, metahttp.Check{Name: "artifacts", Target: req.Artifacts})
	}
	return out
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Prefix implements the modkit.Module interface
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
