// Command preload-generate runs one URL generation from the shell, the same run POST /v1/generate performs
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"preloadassist/internal/modkit"
	"preloadassist/internal/platform/config"
	"preloadassist/internal/platform/logger"
	"preloadassist/internal/platform/store"
	"preloadassist/internal/platform/store/migrate"

	catmod "preloadassist/internal/services/catalog/module"
	filesmod "preloadassist/internal/services/files/module"
	gendom "preloadassist/internal/services/generate/domain"
	genmod "preloadassist/internal/services/generate/module"
)

func csv(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	var (
		fMax     = flag.Int("max", 0, "URL cap for this run (0 uses CORE_GENERATE_MAX_URLS)")
		fEmpty   = flag.Bool("include-empty", false, "also emit each bare category URL")
		fPartial = flag.Bool("allow-partial", false, "let URLs leave out any facet or parameter")
		fCats    = flag.String("categories", "", "comma separated category ids (default all enabled)")
		fFacets  = flag.String("facets", "", "comma separated facet names (default all enabled)")
		fParams  = flag.String("params", "", "comma separated parameter names (default all enabled)")
		fSelect  = flag.Bool("select", true, "select the new file for the preload integration")
		fMigrate = flag.Bool("migrate", true, "apply schema migrations before running")
		fDotEnv  = flag.String("env", ".env", "dotenv file to load when present")
	)
	flag.Parse()

	if _, err := config.LoadDotEnv(*fDotEnv); err != nil {
		logger.Get().Fatal().Err(err).Msg("load env failed")
	}
	l := logger.Named("preload-generate")

	req := gendom.Request{
		MaxURLs:      *fMax,
		IncludeEmpty: *fEmpty,
		AllowPartial: *fPartial,
		Facets:       csv(*fFacets),
		Parameters:   csv(*fParams),
		Select:       *fSelect,
	}
	for _, c := range csv(*fCats) {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil || id < 1 {
			l.Fatal().Str("category", c).Msg("bad -categories value")
		}
		req.Categories = append(req.Categories, id)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := config.New()
	st, err := store.Open(ctx, store.FromConf(root, "generate"), store.WithLogger(*logger.Get()))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	if *fMigrate {
		if err := migrate.Apply(ctx, st.PG); err != nil {
			l.Fatal().Err(err).Msg("migrate.Apply failed")
		}
	}

	deps := modkit.Deps{Cfg: root, PG: st.PG, CH: st.CH, Log: *logger.Get()}

	catalog := catmod.NewService(deps, catmod.FromConfig(root))
	files, fs, err := filesmod.NewService(deps, filesmod.FromConfig(root))
	if err != nil {
		l.Fatal().Err(err).Msg("artifact storage unavailable")
	}
	gen := genmod.NewService(ctx, deps, genmod.FromConfig(root), genmod.Requires{
		Sources:  catalog,
		Sink:     fs,
		Registry: files,
	})

	res, err := gen.Generate(ctx, req)
	if err != nil {
		l.Error().Err(err).Msg("generation failed")
		stop()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
}
