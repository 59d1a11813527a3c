// Package api provides the HTTP API for the application
package api

import (
	"context"

	"preloadassist/internal/platform/config"
	"preloadassist/internal/platform/logger"
	phttp "preloadassist/internal/platform/net/http"
	"preloadassist/internal/platform/store"

	"preloadassist/internal/modkit"
	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/modkit/module"
	"preloadassist/internal/modkit/swaggerkit"

	metamod "preloadassist/internal/services/api/meta/module"
	authmod "preloadassist/internal/services/auth/module"
	catmod "preloadassist/internal/services/catalog/module"
	filesmod "preloadassist/internal/services/files/module"
	genmod "preloadassist/internal/services/generate/module"
	preloadmod "preloadassist/internal/services/preload/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Context bounds background loops such as artifact cleanup; nil disables them
	Context context.Context
}

type cleaner interface {
	StartCleanup(ctx context.Context)
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// catalog and files own the ports generate and preload consume
	catalog := catmod.New(deps)
	cat := module.MustPortsOf[catmod.Ports](catalog)

	files := filesmod.New(deps)
	fp := module.MustPortsOf[filesmod.Ports](files)
	if c, ok := files.(cleaner); ok && opt.Context != nil {
		c.StartCleanup(opt.Context)
	}

	generate := genmod.New(deps, modkit.WithPorts(genmod.Requires{
		Sources:  cat.Sources,
		Sink:     fp.Sink,
		Registry: fp.Registry,
	}))
	preload := preloadmod.New(deps, modkit.WithPorts(preloadmod.Requires{
		Reader:   fp.Reader,
		Settings: cat.Settings,
	}))

	auth := authmod.New(deps)
	a := module.MustPortsOf[authmod.Ports](auth).Auth

	meta := metamod.New(deps, modkit.WithPorts(metamod.Requires{Artifacts: fp.Storage}))

	public := []module.Module{meta, auth}
	admin := []module.Module{catalog, files, generate, preload}

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

	for _, m := range append(append([]module.Module{}, public...), admin...) {
		module.Register(m.Name(), m.Ports())
	}

	stack := httpkit.CommonStack(httpkit.StackFromConfig(opt.Config.Prefix("CORE_API_")))
	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		for _, m := range public {
			m.MountRoutes(api)
		}
		if !a.Enabled() {
			deps.Log.Warn().Msg("CORE_API_JWT_SECRET not set, admin routes are unauthenticated")
			for _, m := range admin {
				m.MountRoutes(api)
			}
			return
		}
		httpkit.Protected(api, httpkit.NewPortFunc(authmod.TokenFunc(a)), func(pr httpkit.Router) {
			for _, m := range admin {
				m.MountRoutes(pr)
			}
		})
	})
}
