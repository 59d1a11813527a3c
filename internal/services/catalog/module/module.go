// Package module wires the catalog into the API using modkit
package module

import (
	"net/http"

	modkit "preloadassist/internal/modkit"
	"preloadassist/internal/modkit/httpkit"
	str "preloadassist/internal/platform/strings"
	cathttp "preloadassist/internal/services/catalog/http"
	catrepo "preloadassist/internal/services/catalog/repo"
	catsvc "preloadassist/internal/services/catalog/service"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc catsvc.Service
}

// New constructs a catalog module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("catalog"), modkit.WithPrefix("/catalog")}, opts...)...)

	svc := NewService(deps, FromConfig(deps.Cfg))

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
		ports:     Ports{Sources: svc, Settings: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		cathttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// NewService builds the catalog service without the http surface, for binaries
func NewService(deps modkit.Deps, opt Options) *catsvc.Svc {
	return catsvc.New(deps.PG, catrepo.NewPG(), catsvc.Options{SiteURL: opt.SiteURL})
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
