// Package modkit holds what every API module is built from: shared deps and build options
package modkit

import (
	"net/http"

	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/modkit/module"
	"preloadassist/internal/modkit/repokit"
	"preloadassist/internal/platform/config"
	"preloadassist/internal/platform/logger"
	"preloadassist/internal/platform/store"
)

// Module is module.Module, re-exported for constructors
type Module = module.Module

// Deps are handed to every module constructor
// CH is nil when clickhouse is not configured or unreachable
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse
}

// Built is the result of applying options
type Built struct {
	Name      string
	Prefix    string
	Mw        []func(http.Handler) http.Handler
	Ports     any // the Requires value passed with WithPorts
	SwaggerOn bool

	Subrouter func(httpkit.Router) httpkit.Router
	Register  func(httpkit.Router) // extra routes mounted after the module's own
}

// Option adjusts a module build
type Option func(*Built)

func WithName(name string) Option     { return func(b *Built) { b.Name = name } }
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }
func WithSwagger(on bool) Option      { return func(b *Built) { b.SwaggerOn = on } }

// WithMiddlewares appends per module middleware, applied in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithPorts hands a module the ports it consumes from other modules
func WithPorts[T any](p T) Option { return func(b *Built) { b.Ports = p } }

// WithSubrouter wraps the module router before routes are registered
func WithSubrouter(fn func(httpkit.Router) httpkit.Router) Option {
	return func(b *Built) { b.Subrouter = fn }
}

// WithRegister mounts extra routes next to the module's own
func WithRegister(fn func(httpkit.Router)) Option {
	return func(b *Built) { b.Register = fn }
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	if b.Subrouter == nil {
		b.Subrouter = func(r httpkit.Router) httpkit.Router { return r }
	}
	if b.Register == nil {
		b.Register = func(httpkit.Router) {}
	}
	return b
}
