// Package httpkit is the routing and handler surface modules build on
// Modules import it instead of the platform http packages
package httpkit

import (
	"io"
	"net/http"

	phttp "preloadassist/internal/platform/net/http"
)

type (
	Response = phttp.Response
	Handler  = phttp.Handler
	Router   = phttp.Router
)

func OK(data any) Response      { return phttp.OK(data) }
func Created(data any) Response { return phttp.Created(data) }
func NoContent() Response       { return phttp.NoContent() }
func Error(err error) Response  { return phttp.Error(err) }

// Get mounts a GET handler; fn may return a Response to choose the status
func Get(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Get(path, phttp.CallHandler(fn))
}

// Post mounts a POST handler that reads no JSON body
func Post(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Post(path, phttp.CallHandler(fn))
}

// Delete mounts a DELETE handler
func Delete(r Router, path string, fn func(*http.Request) (any, error)) {
	r.Delete(path, phttp.CallHandler(fn))
}

// PostJSON mounts a POST handler receiving a bound and validated T
func PostJSON[T any](r Router, path string, fn func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(fn))
}

// Text mounts a GET handler writing text/plain; errors keep the JSON envelope
func Text(r Router, path string, fn func(*http.Request) (string, error)) {
	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		body, err := fn(req)
		if err != nil {
			phttp.Handle(func(*http.Request) Response { return Error(err) })(w, req)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, body)
	})
}
