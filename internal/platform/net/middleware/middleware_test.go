package middleware_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
	pnet "preloadassist/internal/platform/net"
	"preloadassist/internal/platform/net/middleware"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	t.Cleanup(logger.Set(logger.New(logger.Options{Level: "debug", Format: "json", Writer: &buf})))
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	line, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
	if err := json.Unmarshal(line, &m); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	return m
}

func TestAccessLog(t *testing.T) {
	cases := []struct {
		name   string
		status int
		slow   time.Duration
		level  string
	}{
		{"ok", http.StatusCreated, 0, "info"},
		{"slow", http.StatusOK, time.Nanosecond, "warn"},
		{"server error", http.StatusBadGateway, 0, "error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			buf := captureLogs(t)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(time.Millisecond)
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte("body"))
			})
			h := middleware.RequestID()(middleware.AccessLog(c.slow)(next))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
			req.Header.Set("X-Request-Id", "req-42")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != c.status || rec.Body.String() != "body" {
				t.Fatalf("response changed: %d %q", rec.Code, rec.Body.String())
			}
			m := decodeLine(t, buf)
			if m["level"] != c.level || m["request_id"] != "req-42" || m["path"] != "/api/v1/files" || m["bytes"] != float64(4) {
				t.Fatalf("log line = %v", m)
			}
		})
	}
}

type portFunc func(*http.Request) (string, error)

func (f portFunc) Parse(r *http.Request) (string, error) { return f(r) }

func TestAuth(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = pnet.Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	write := func(w http.ResponseWriter, status int, body any) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
	port := portFunc(func(r *http.Request) (string, error) {
		if r.Header.Get("Authorization") == "Bearer good" {
			return "admin", nil
		}
		return "", perr.Unauthorizedf("invalid bearer token")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	middleware.Auth(port, write)(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != "admin" {
		t.Fatalf("good token: %d subject %q", rec.Code, seen)
	}

	seen = ""
	rec = httptest.NewRecorder()
	middleware.Auth(port, write)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized || seen != "" || !strings.Contains(rec.Body.String(), "invalid bearer token") {
		t.Fatalf("no token: %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	middleware.Auth(nil, write)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("nil port should pass through, got %d", rec.Code)
	}
}

func TestRecoverJSON(t *testing.T) {
	_ = captureLogs(t)
	h := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("nil map"))
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(pnet.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env pnet.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != 500 || env.Code != perr.ErrorCodePanic || env.RequestID != "req-1" || rec.Header().Get("X-Request-ID") != "req-1" {
		t.Fatalf("got %d %+v", rec.Code, env)
	}

	defer func() {
		if recover() != http.ErrAbortHandler {
			t.Fatalf("ErrAbortHandler should propagate")
		}
	}()
	middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})).ServeHTTP(httptest.NewRecorder(), req)
}

func TestCORSAndStripSlashes(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://admin.shop.test"}})(
		middleware.StripSlashes()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(r.URL.Path))
		})))
	req := httptest.NewRequest(http.MethodGet, "/files/", nil)
	req.Header.Set("Origin", "https://admin.shop.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://admin.shop.test" {
		t.Fatalf("cors headers missing: %v", rec.Header())
	}
	if rec.Body.String() != "/files" {
		t.Fatalf("path = %q", rec.Body.String())
	}
}
