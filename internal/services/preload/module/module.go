// Package module wires the preload integration into the API using modkit
package module

import (
	"net/http"

	"preloadassist/internal/adapters/warmer"
	modkit "preloadassist/internal/modkit"
	"preloadassist/internal/modkit/httpkit"
	str "preloadassist/internal/platform/strings"
	phttp "preloadassist/internal/services/preload/http"
	psvc "preloadassist/internal/services/preload/service"
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

	svc psvc.Service
}

// New constructs the preload module; Requires must be passed with modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("preload"), modkit.WithPrefix("/preload")}, opts...)...)

	req, _ := b.Ports.(Requires)
	if req.Reader == nil || req.Settings == nil {
		panic("preload module requires files Reader and catalog Settings ports")
	}
	svc := NewService(FromConfig(deps.Cfg), req)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
		ports:     Ports{Publisher: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		phttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// NewService builds the preload service and its webhook client
func NewService(opt Options, req Requires) *psvc.Svc {
	w := warmer.New(warmer.Options{
		URL:     opt.WebhookURL,
		Token:   opt.WebhookToken,
		Timeout: opt.WebhookTimeout,
	})
	return psvc.New(req.Reader, req.Settings, w, opt.Enabled)
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
