// Package store opens the postgres and clickhouse backends behind small seams
package store

import (
	"context"
	"errors"

	"preloadassist/internal/platform/logger"
)

// Store holds the opened backends; a backend left disabled stays nil
type Store struct {
	Log logger.Logger
	PG  TxRunner
	CH  Clickhouse
}

// Option adjusts the Store before any backend opens
type Option func(*Store) error

// WithLogger routes backend logs to log instead of a no-op logger
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error { s.Log = log; return nil }
}

// Open connects every backend enabled in cfg
// A clickhouse failure is only a warning when cfg.CH.Optional is set
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: logger.Logger{}}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	s.Log = s.Log.With().Str("component", "store").Logger()

	if cfg.PG.Enabled {
		db, err := openPG(ctx, cfg, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = db
	}
	if !cfg.CH.Enabled {
		return s, nil
	}

	c, err := openCH(ctx, cfg, s.Log)
	if err != nil {
		if !cfg.CH.Optional {
			_ = s.Close(ctx)
			return nil, err
		}
		s.Log.Warn().Err(err).Msg("clickhouse unavailable, continuing without it")
		return s, nil
	}
	s.CH = c
	return s, nil
}

// Close shuts clickhouse then postgres and joins their errors
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
