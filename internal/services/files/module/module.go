// Package module wires generated files into the API using modkit
package module

import (
	"context"
	"net/http"

	modkit "preloadassist/internal/modkit"
	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/platform/logger"
	str "preloadassist/internal/platform/strings"
	fhttp "preloadassist/internal/services/files/http"
	frepo "preloadassist/internal/services/files/repo"
	fsvc "preloadassist/internal/services/files/service"
	"preloadassist/internal/services/files/storage"
)

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string
	opt    Options

	mws       []func(http.Handler) http.Handler
	ports     Ports
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *fsvc.Svc
}

// New constructs the files module; it panics when the artifact directory cannot be created
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("files"), modkit.WithPrefix("/files")}, opts...)...)

	opt := FromConfig(deps.Cfg)
	svc, fs, err := NewService(deps, opt)
	if err != nil {
		panic("files module: " + err.Error())
	}

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		opt:       opt,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
		ports:     Ports{Sink: fs, Registry: svc, Reader: svc, Storage: fs},
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		fhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// NewService builds the files service and its storage, for binaries
func NewService(deps modkit.Deps, opt Options) (*fsvc.Svc, *storage.FS, error) {
	fs, err := storage.NewFS(opt.Dir)
	if err != nil {
		return nil, nil, err
	}
	svc := fsvc.New(deps.PG, frepo.NewPG(), fs, fsvc.Options{
		PublicBaseURL: opt.PublicBaseURL,
		PreviewLimit:  opt.PreviewLimit,
		Keep:          opt.Keep,
	})
	return svc, fs, nil
}

// StartCleanup runs scheduled retention in the background until ctx ends
func (m *Module) StartCleanup(ctx context.Context) {
	go func() {
		if err := m.svc.RunCleanupLoop(ctx, m.opt.CleanupEvery, m.opt.Keep); err != nil && ctx.Err() == nil {
			logger.Named("files").Error().Err(err).Msg("cleanup loop stopped")
		}
	}()
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
