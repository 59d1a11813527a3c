// Package logger owns the process zerolog logger and the context fields
// (request_id, run_id) that request and generation code attach to it
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"preloadassist/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is zerolog's logger
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level   string // trace..panic, unknown means debug
	Format  string // console or json
	Service string
	Caller  bool
	Writer  io.Writer // stdout when nil
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE and LOG_CALLER
// It uses the raw config view since config itself logs
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:   rc.Get("LEVEL", "debug"),
		Format:  strings.ToLower(rc.Get("FORMAT", "console")),
		Service: rc.Get("SERVICE", "preload-assist"),
		Caller:  rc.GetBool("CALLER", false),
	}
}

var (
	initOnce sync.Once
	root     atomic.Pointer[zerolog.Logger]
)

// Init builds the root logger; only the first call has any effect
func Init(opt Options) {
	initOnce.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := New(opt)
		root.Store(&l)
	})
}

// New builds a logger from opt without touching the root one
func New(opt Options) Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	zc := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		zc = zc.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		zc = zc.Str("service", opt.Service)
	}
	if opt.Caller {
		zc = zc.Caller()
	}
	return zc.Logger()
}

// Get returns the root logger, initializing it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Set replaces the root logger and returns a func restoring the previous one
func Set(l Logger) (restore func()) {
	prev := Get()
	root.Store(&l)
	return func() { root.Store(prev) }
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

type ctxKey uint8

const (
	requestIDKey ctxKey = iota
	runIDKey
)

// WithRequest tags ctx with the HTTP request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, reqID)
}

// WithRun tags ctx with a generation run id
func WithRun(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, runID)
}

// Annotate adds request_id and run_id from ctx to zc
func Annotate(ctx context.Context, zc zerolog.Context) zerolog.Context {
	if s, _ := ctx.Value(requestIDKey).(string); s != "" {
		zc = zc.Str("request_id", s)
	}
	if s, _ := ctx.Value(runIDKey).(string); s != "" {
		zc = zc.Str("run_id", s)
	}
	return zc
}

// C is the root logger plus the fields carried by ctx
func C(ctx context.Context) *Logger {
	l := Annotate(ctx, Get().With()).Logger()
	return &l
}

// Named is the root logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
