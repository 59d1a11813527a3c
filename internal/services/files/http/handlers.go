// Package http provides http transport for generated files
package http

import (
	stdhttp "net/http"

	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/services/files/domain"
	svc "preloadassist/internal/services/files/service"
)

// Register mounts files endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/directory", h.directory)
	httpkit.PostJSON[domain.CleanupInput](r, "/cleanup", h.cleanup)
	httpkit.Get(r, "/{id}/preview", h.preview)
	httpkit.Get(r, "/{id}/export", h.export)
	httpkit.Post(r, "/{id}/select", h.selectFile)
	httpkit.Delete(r, "/{id}", h.remove)
}

type handlers struct{ svc svc.Service }

// @Summary List generated files, newest first
// @Tags Files
// @Produce json
// @Success 200 {array} domain.File "ok"
// @Router /files [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.svc.List(r.Context())
}

// @Summary Artifact directory usage
// @Tags Files
// @Produce json
// @Success 200 {object} domain.DirectoryInfo "ok"
// @Router /files/directory [get]
func (h *handlers) directory(r *stdhttp.Request) (any, error) {
	return h.svc.DirectoryInfo(r.Context())
}

// @Summary Delete old files, keeping the newest and the selected one
// @Tags Files
// @Accept json
// @Produce json
// @Param payload body domain.CleanupInput true "Retention"
// @Success 200 {object} domain.CleanupResult "ok"
// @Router /files/cleanup [post]
func (h *handlers) cleanup(r *stdhttp.Request, in domain.CleanupInput) (any, error) {
	keep := 0
	if in.Keep != nil {
		keep = *in.Keep
	}
	return h.svc.Cleanup(r.Context(), keep)
}

// @Summary Preview a file's lines
// @Tags Files
// @Produce json
// @Param id path int true "File id"
// @Param limit query int false "Lines to return"
// @Param offset query int false "Lines to skip"
// @Success 200 {object} domain.Preview "ok"
// @Router /files/{id}/preview [get]
func (h *handlers) preview(r *stdhttp.Request) (any, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return nil, err
	}
	limit, err := httpkit.QueryInt(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	offset, err := httpkit.QueryInt(r, "offset", 0)
	if err != nil {
		return nil, err
	}
	return h.svc.Preview(r.Context(), id, limit, offset)
}

// @Summary Download link for a file
// @Tags Files
// @Produce json
// @Param id path int true "File id"
// @Success 200 {object} domain.Export "ok"
// @Router /files/{id}/export [get]
func (h *handlers) export(r *stdhttp.Request) (any, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Export(r.Context(), id)
}

// @Summary Select a file for preloading
// @Tags Files
// @Produce json
// @Param id path int true "File id"
// @Success 200 {object} domain.File "ok"
// @Router /files/{id}/select [post]
func (h *handlers) selectFile(r *stdhttp.Request) (any, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return nil, err
	}
	return h.svc.Select(r.Context(), id)
}

// @Summary Delete a file
// @Tags Files
// @Param id path int true "File id"
// @Success 204 "deleted"
// @Router /files/{id} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	id, err := httpkit.ParamInt64(r, "id")
	if err != nil {
		return nil, err
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}
