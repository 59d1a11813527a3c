package httpkit

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	perr "preloadassist/internal/platform/errors"
)

// MaxRawBody bounds RawBody reads
const MaxRawBody = 8 << 20

// Param returns a trimmed path parameter, a missing one is an invalid argument
func Param(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, name))
	if v == "" {
		return "", perr.WithField(perr.InvalidArgf("%s is required", name), name)
	}
	return v, nil
}

// ParamInt64 parses a positive integer path parameter
func ParamInt64(r *http.Request, name string) (int64, error) {
	raw, err := Param(r, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, perr.WithField(perr.InvalidArgf("%s must be a positive integer", name), name)
	}
	return n, nil
}

// QueryInt reads an optional integer query value, def when absent
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perr.WithField(perr.InvalidArgf("%s must be an integer", name), name)
	}
	return n, nil
}

// RawBody reads the whole request body up to MaxRawBody, an empty body is a JSON error
func RawBody(r *http.Request) ([]byte, error) {
	defer func() { _ = r.Body.Close() }()
	b, err := io.ReadAll(io.LimitReader(r.Body, MaxRawBody+1))
	if err != nil {
		return nil, perr.JSONErrf("read body: %v", err)
	}
	if len(b) > MaxRawBody {
		return nil, perr.JSONErrf("body exceeds %d bytes", MaxRawBody)
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil, perr.JSONErrf("empty body")
	}
	return b, nil
}
