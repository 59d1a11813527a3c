// Package http provides http transport for generation runs
package http

import (
	stdhttp "net/http"

	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/services/generate/domain"
	svc "preloadassist/internal/services/generate/service"
)

// Register mounts generation endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.PostJSON[domain.Request](r, "/", h.generate)
	httpkit.Get(r, "/runs", h.runs)
}

type handlers struct{ svc svc.Service }

// @Summary Generate a preload URL file
// @Description Enumerates enabled categories, facets and parameters into a new file
// @Tags Generate
// @Accept json
// @Produce json
// @Param payload body domain.Request true "Generation request"
// @Success 201 {object} domain.Result "created"
// @Failure 400 {object} map[string]any "nothing to generate"
// @Failure 409 {object} map[string]any "run in progress"
// @Router /generate [post]
func (h *handlers) generate(r *stdhttp.Request, in domain.Request) (any, error) {
	res, err := h.svc.Generate(r.Context(), in)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(res), nil
}

// @Summary Recent generation runs, newest first
// @Tags Generate
// @Produce json
// @Param limit query int false "Runs to return"
// @Success 200 {array} domain.Run "ok"
// @Router /generate/runs [get]
func (h *handlers) runs(r *stdhttp.Request) (any, error) {
	limit, err := httpkit.QueryInt(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	return h.svc.Runs(r.Context(), limit)
}
