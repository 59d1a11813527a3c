package httpkit

import (
	"net/http"
	"strings"

	perr "preloadassist/internal/platform/errors"
	pnet "preloadassist/internal/platform/net"
	phttp "preloadassist/internal/platform/net/http"
	"preloadassist/internal/platform/net/middleware"
)

// TokenFunc verifies a bearer token and returns its subject
type TokenFunc func(token string) (subject string, err error)

// Port is a middleware.AuthPort over Authorization: Bearer
type Port struct{ verify TokenFunc }

// NewPortFunc builds a Port around fn
func NewPortFunc(fn TokenFunc) *Port { return &Port{verify: fn} }

// Parse reports any verification failure as the same unauthorized error
func (p *Port) Parse(r *http.Request) (string, error) {
	tok, err := BearerToken(r)
	if err != nil {
		return "", err
	}
	if p.verify == nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	sub, err := p.verify(tok)
	if err != nil {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return sub, nil
}

// BearerToken extracts the token from Authorization, the scheme is case insensitive
func BearerToken(r *http.Request) (string, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	tok = strings.TrimSpace(tok)
	if !ok || !strings.EqualFold(scheme, "bearer") || tok == "" {
		return "", perr.Unauthorizedf("missing bearer token")
	}
	return tok, nil
}

// Protected mounts fn's routes behind p
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(g Router) {
		g.Use(middleware.Auth(p, phttp.JSON))
		fn(g)
	})
}

// Subject is the admin user a protected route runs as, "" elsewhere
func Subject(r *http.Request) string { return pnet.Subject(r.Context()) }
