// Package http provides http transport for the preload integration
package http

import (
	stdhttp "net/http"
	"strings"

	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/services/preload/domain"
	svc "preloadassist/internal/services/preload/service"
)

// Register mounts preload endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/status", h.status)
	httpkit.PostJSON[domain.IntegrationInput](r, "/integration", h.integration)
	httpkit.Post(r, "/trigger", h.trigger)
	httpkit.Text(r, "/urls", h.urls)
}

type handlers struct{ svc svc.Service }

// @Summary Preload integration status
// @Tags Preload
// @Produce json
// @Success 200 {object} domain.Status "ok"
// @Router /preload/status [get]
func (h *handlers) status(r *stdhttp.Request) (any, error) {
	return h.svc.Status(r.Context())
}

// @Summary Enable or disable serving the selected file
// @Tags Preload
// @Accept json
// @Produce json
// @Param payload body domain.IntegrationInput true "Flag"
// @Success 200 {object} domain.Status "ok"
// @Router /preload/integration [post]
func (h *handlers) integration(r *stdhttp.Request, in domain.IntegrationInput) (any, error) {
	return h.svc.SetIntegrationEnabled(r.Context(), in.Enabled)
}

// @Summary Push the selected file to the cache warmer webhook
// @Tags Preload
// @Produce json
// @Success 200 {object} domain.TriggerResult "ok"
// @Failure 404 {object} map[string]any "no file selected"
// @Failure 503 {object} map[string]any "webhook not configured"
// @Router /preload/trigger [post]
func (h *handlers) trigger(r *stdhttp.Request) (any, error) {
	return h.svc.Trigger(r.Context())
}

// @Summary URLs for the cache warmer, one per line
// @Tags Preload
// @Produce plain
// @Success 200 {string} string "newline separated URLs"
// @Router /preload/urls [get]
func (h *handlers) urls(r *stdhttp.Request) (string, error) {
	urls, err := h.svc.Publish(r.Context(), nil)
	if err != nil || len(urls) == 0 {
		return "", err
	}
	return strings.Join(urls, "\n") + "\n", nil
}
