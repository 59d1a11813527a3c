// Package module wires URL generation into the API using modkit
package module

import (
	"context"
	"net/http"
	"time"

	modkit "preloadassist/internal/modkit"
	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/platform/logger"
	str "preloadassist/internal/platform/strings"
	"preloadassist/internal/services/generate/domain"
	ghttp "preloadassist/internal/services/generate/http"
	"preloadassist/internal/services/generate/runlog"
	gsvc "preloadassist/internal/services/generate/service"
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

	svc gsvc.Service
}

// New constructs the generate module; Requires must be passed with modkit.WithPorts
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("generate"), modkit.WithPrefix("/generate")}, opts...)...)

	req, _ := b.Ports.(Requires)
	if req.Sources == nil || req.Sink == nil || req.Registry == nil {
		panic("generate module requires catalog Sources and files Sink/Registry ports")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	svc := NewService(ctx, deps, FromConfig(deps.Cfg), req)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
		ports:     Ports{Generator: svc},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ghttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// NewService builds the generation service, for binaries
// Run history goes to ClickHouse when it is configured and reachable, otherwise to memory
func NewService(ctx context.Context, deps modkit.Deps, opt Options, req Requires) *gsvc.Svc {
	return gsvc.New(
		req.Sources,
		req.Sink,
		req.Registry,
		gsvc.NewPGLease(deps.PG, opt.LockKey),
		history(ctx, deps, opt),
		gsvc.Options{SiteURL: opt.SiteURL, MaxURLs: opt.MaxURLs, Timeout: opt.Timeout},
	)
}

func history(ctx context.Context, deps modkit.Deps, opt Options) domain.RunLog {
	if deps.CH == nil {
		return runlog.NewMemory(opt.History)
	}
	l := runlog.NewCH(deps.CH)
	if err := l.Ensure(ctx); err != nil {
		logger.Named("generate").Warn().Err(err).Msg("run history table unavailable, keeping history in memory")
		return runlog.NewMemory(opt.History)
	}
	return l
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
