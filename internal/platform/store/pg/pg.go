// Package pg opens the pgx pool behind the store's sql seam
package pg

import (
	"context"
	"time"

	"preloadassist/internal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32
	AppName  string // pg_stat_activity.application_name

	LogSQL bool
	Slow   time.Duration // statements at or above this log at warn; 0 never
}

var newPool = pgxpool.NewWithConfig

// Open builds the pool without connecting; the caller pings it
func Open(ctx context.Context, cfg Config, log logger.Logger) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	if cfg.LogSQL {
		pc.ConnConfig.Tracer = NewTracer(log, cfg.Slow)
	}
	return newPool(ctx, pc)
}
