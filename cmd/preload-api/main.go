// @title         Preload Assist API
// @version       0.1.0
// @description   Catalog admin, URL generation, artifact files and the preload integration

package main

import (
	"context"
	"os/signal"
	"syscall"

	"preloadassist/internal/platform/config"
	"preloadassist/internal/platform/logger"
	phttp "preloadassist/internal/platform/net/http"
	"preloadassist/internal/platform/store"
	"preloadassist/internal/platform/store/migrate"

	"preloadassist/internal/services/api"
)

func main() {
	// .env is optional, real env wins
	if _, err := config.LoadDotEnv(); err != nil {
		logger.Get().Panic().Err(err).Msg("load .env failed")
	}

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// open the platform store (postgres + optional CH for run history)
	st, err := store.Open(ctx, store.FromConf(root, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if err := migrate.Apply(ctx, st.PG); err != nil {
		l.Panic().Err(err).Msg("migrate.Apply failed")
	}

	// http server on CORE_API_API_PORT
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			Context:        ctx,
		},
	)

	// run
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
