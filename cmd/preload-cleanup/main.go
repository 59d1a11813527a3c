// Command preload-cleanup applies artifact retention once, for cron
package main

import (
	"context"
	"flag"

	"preloadassist/internal/modkit"
	"preloadassist/internal/platform/config"
	"preloadassist/internal/platform/logger"
	"preloadassist/internal/platform/store"

	filesmod "preloadassist/internal/services/files/module"
)

func main() {
	var (
		fKeep   = flag.Int("keep", 0, "newest files to keep (0 uses CORE_FILES_KEEP)")
		fDotEnv = flag.String("env", ".env", "dotenv file to load when present")
	)
	flag.Parse()

	if _, err := config.LoadDotEnv(*fDotEnv); err != nil {
		logger.Get().Fatal().Err(err).Msg("load env failed")
	}
	l := logger.Named("preload-cleanup")

	ctx := context.Background()
	root := config.New()
	st, err := store.Open(ctx, store.FromConf(root, "cleanup"), store.WithLogger(*logger.Get()))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(ctx); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	opt := filesmod.FromConfig(root)
	if *fKeep > 0 {
		opt.Keep = *fKeep
	}
	svc, _, err := filesmod.NewService(modkit.Deps{Cfg: root, PG: st.PG, Log: *logger.Get()}, opt)
	if err != nil {
		l.Fatal().Err(err).Msg("artifact storage unavailable")
	}

	res, err := svc.Cleanup(ctx, opt.Keep)
	if err != nil {
		l.Fatal().Err(err).Msg("cleanup failed")
	}
	l.Info().Int("deleted", res.Deleted).Int("keep", opt.Keep).Msg("cleanup done")
}
