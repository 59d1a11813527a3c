// Package http serves liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"preloadassist/internal/core/version"
	"preloadassist/internal/modkit/httpkit"
)

// Pinger is satisfied by anything readiness can probe
type Pinger interface {
	Ping(context.Context) error
}

// Check is one readiness probe; Optional probes never fail the service
type Check struct {
	Name     string
	Target   any
	Optional bool
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	Timeout     time.Duration
	Modules     func() []string

	SiteURL string
	MaxURLs int
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
	httpkit.Get(r, "/generator", h.generator)
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"preload-api"`
	Started string `json:"started" example:"2026-10-16T08:00:00Z"`
	Now     string `json:"now"     example:"2026-10-16T08:05:00Z"`
}

// ReadyCheck is the outcome of one probe
type ReadyCheck struct {
	Name     string `json:"name"     example:"pg"`
	Status   string `json:"status"   example:"ok"` // ok fail skipped unknown
	Optional bool   `json:"optional" example:"false"`
	Error    string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse summarizes readiness
// degraded means an optional dependency is missing or failing
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-16T08:05:00Z"`
}

// ServiceResponse describes the running process
type ServiceResponse struct {
	Name    string   `json:"name"    example:"preload-api"`
	Started string   `json:"started" example:"2026-10-16T08:00:00Z"`
	Uptime  int64    `json:"uptime"  example:"300"`
	Modules []string `json:"modules" example:"catalog,files"`
}

// GeneratorResponse reports generation defaults and build info
type GeneratorResponse struct {
	SiteURL string            `json:"site_url" example:"https://shop.test/"`
	MaxURLs int               `json:"max_urls" example:"10000"`
	Build   version.BuildInfo `json:"build"`
}

func (h *handlers) stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.stamp(h.deps.StartedAt),
		Now:     h.stamp(h.now()),
	}, nil
}

func probe(ctx context.Context, c Check) ReadyCheck {
	out := ReadyCheck{Name: c.Name, Optional: c.Optional}
	p, ok := c.Target.(Pinger)
	switch {
	case c.Target == nil:
		out.Status = "skipped"
	case !ok:
		out.Status = "unknown"
	default:
		if err := p.Ping(ctx); err != nil {
			out.Status, out.Error = "fail", err.Error()
		} else {
			out.Status = "ok"
		}
	}
	return out
}

// @Summary Readiness with dependency probes
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.deps.Timeout)
	defer cancel()

	res := ReadyResponse{Status: "ok", Now: h.stamp(h.now())}
	for _, c := range h.deps.Checks {
		rc := probe(ctx, c)
		res.Checks = append(res.Checks, rc)
		if rc.Status == "ok" {
			continue
		}
		if c.Optional || rc.Status != "fail" {
			if res.Status == "ok" {
				res.Status = "degraded"
			}
			continue
		}
		res.Status = "fail"
	}
	return res, nil
}

// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// @Summary Service info and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	mods := []string{}
	if h.deps.Modules != nil {
		mods = h.deps.Modules()
	}
	return ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.stamp(h.deps.StartedAt),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
		Modules: mods,
	}, nil
}

// @Summary Generation defaults and build
// @Tags Meta
// @Produce json
// @Success 200 {object} GeneratorResponse
// @Router /meta/generator [get]
func (h *handlers) generator(_ *http.Request) (any, error) {
	return GeneratorResponse{
		SiteURL: h.deps.SiteURL,
		MaxURLs: h.deps.MaxURLs,
		Build:   version.Info(),
	}, nil
}
