// Package http provides http transport for admin login
package http

import (
	stdhttp "net/http"

	"preloadassist/internal/modkit/httpkit"
	"preloadassist/internal/services/auth/domain"
	svc "preloadassist/internal/services/auth/service"
)

// Register mounts auth endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.LoginInput](r, "/token", h.token)
}

type handlers struct{ svc svc.Service }

// @Summary Exchange admin credentials for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body domain.LoginInput true "Credentials"
// @Success 200 {object} domain.Token "ok"
// @Failure 401 {object} map[string]any "invalid credentials"
// @Router /auth/token [post]
func (h *handlers) token(r *stdhttp.Request, in domain.LoginInput) (any, error) {
	return h.svc.Login(r.Context(), in)
}
