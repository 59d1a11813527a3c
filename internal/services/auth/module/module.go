// Package module wires admin login into the API using modkit
package module

import (
	"net/http"
	"time"

	modkit "preloadassist/internal/modkit"
	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/platform/config"
	str "preloadassist/internal/platform/strings"
	"preloadassist/internal/services/auth/domain"
	ahttp "preloadassist/internal/services/auth/http"
	asvc "preloadassist/internal/services/auth/service"
)

// Options controls admin authentication
type Options struct {
	Secret       string
	Username     string
	PasswordHash string
	TTL          time.Duration
}

// FromConfig reads CORE_API_* auth values from process config/env
func FromConfig(cfg config.Conf) Options {
	ac := cfg.Prefix("CORE_API_")
	return Options{
		Secret:       ac.MayString("JWT_SECRET", ""),
		Username:     ac.MayString("ADMIN_USER", "admin"),
		PasswordHash: ac.MayString("ADMIN_PASSWORD_HASH", ""),
		TTL:          ac.MayDuration("TOKEN_TTL", 24*time.Hour),
	}
}

// Ports are what the auth module exposes to other modules
type Ports struct {
	Auth domain.ServicePort
}

// Module implements the modkit.Module interface
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports

	register func(httpkit.Router)
}

// New constructs the auth module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("auth"), modkit.WithPrefix("/auth")}, opts...)...)

	o := FromConfig(deps.Cfg)
	svc := asvc.New(asvc.Options{Secret: o.Secret, Username: o.Username, PasswordHash: o.PasswordHash, TTL: o.TTL})

	m := &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, ports: Ports{Auth: svc}}
	external := b.Register
	m.register = func(r httpkit.Router) {
		ahttp.Register(r, svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// TokenFunc adapts the auth service to httpkit bearer parsing
func TokenFunc(a domain.ServicePort) httpkit.TokenFunc {
	return a.Parse
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }
