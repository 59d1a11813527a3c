package middleware

import (
	"net/http"

	pnet "preloadassist/internal/platform/net"
)

// AuthPort resolves the caller of a request
type AuthPort interface {
	Parse(r *http.Request) (subject string, err error)
}

// Auth rejects requests p cannot resolve using write for the error envelope
// A nil port lets everything through
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if p == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			next.ServeHTTP(w, r.WithContext(pnet.WithSubject(r.Context(), sub)))
		})
	}
}
