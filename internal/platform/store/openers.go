package store

import (
	"context"
	"fmt"
	"time"

	"preloadassist/internal/platform/logger"
	chx "preloadassist/internal/platform/store/ch"
	"preloadassist/internal/platform/store/pg"

	"github.com/cenkalti/backoff/v4"
)

// pingPolicy is exponential from 150ms capped at 2s, attempts tries in total
func pingPolicy(ctx context.Context, attempts int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 150 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// openPG returns the adapter only once the pool answers a ping
func openPG(ctx context.Context, cfg Config, log logger.Logger) (*pgAdapter, error) {
	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		AppName:  cfg.AppName,
		LogSQL:   cfg.PG.LogSQL,
		Slow:     time.Duration(cfg.PG.SlowQueryMs) * time.Millisecond,
	}, log)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	try := 0
	ping := func() error {
		try++
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		// pgx pings bypass the query tracer
		return p.Ping(pctx)
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", try).Int("of", attempts).Dur("retry_in", wait).Msg("postgres not ready")
	}
	if err := backoff.RetryNotify(ping, pingPolicy(ctx, attempts), notify); err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", try, err)
	}
	return newPGAdapter(p), nil
}

// openCH reports ClientName (or AppName) as the client role
func openCH(ctx context.Context, cfg Config, log logger.Logger) (Clickhouse, error) {
	role := cfg.CH.ClientName
	if role == "" {
		role = cfg.AppName
	}
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: role, Tag: cfg.CH.ClientTag})
	if err != nil {
		return nil, err
	}
	log.Info().Str("role", role).Str("tag", cfg.CH.ClientTag).Msg("clickhouse connected")
	return chStore{c}, nil
}
