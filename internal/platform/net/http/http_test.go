package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"preloadassist/internal/platform/config"
	perr "preloadassist/internal/platform/errors"
	pnet "preloadassist/internal/platform/net"
	phttp "preloadassist/internal/platform/net/http"
)

type nameIn struct {
	Name string `json:"name" validate:"required,qkey"`
}

func serve(t *testing.T, mount func(phttp.Router), method, path, body string) (*httptest.ResponseRecorder, phttp.Envelope) {
	t.Helper()
	mux := chi.NewRouter()
	mount(phttp.AdaptChi(mux))
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(pnet.WithRequestID(req.Context(), "req-7"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	var env phttp.Envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestResponses(t *testing.T) {
	cases := []struct {
		name   string
		resp   phttp.Response
		status int
		code   perr.ErrorCode
	}{
		{"ok", phttp.OK(map[string]int{"files": 2}), 200, 0},
		{"created", phttp.Created("x"), 201, 0},
		{"zero status", phttp.Response{Body: "x"}, 200, 0},
		{"not found", phttp.Error(perr.NotFoundf("file 9")), 404, perr.ErrorCodeNotFound},
		{"conflict", phttp.Error(perr.Conflictf("generation already running")), 409, perr.ErrorCodeConflict},
		{"foreign", phttp.Error(errors.New("boom")), 500, perr.ErrorCodeUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec, env := serve(t, func(r phttp.Router) {
				r.Get("/x", phttp.Handle(func(*http.Request) phttp.Response { return c.resp }))
			}, http.MethodGet, "/x", "")
			if rec.Code != c.status || env.StatusCode != c.status || env.Code != c.code || env.RequestID != "req-7" {
				t.Fatalf("got %d %+v", rec.Code, env)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Fatalf("content type %q", ct)
			}
		})
	}
}

func TestNoContentAndHeaders(t *testing.T) {
	rec, _ := serve(t, func(r phttp.Router) {
		r.Delete("/x", phttp.Handle(func(*http.Request) phttp.Response {
			resp := phttp.NoContent()
			resp.Header = http.Header{"X-Deleted": {"3"}}
			return resp
		}))
	}, http.MethodDelete, "/x", "")
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("X-Deleted") != "3" {
		t.Fatalf("got %d %q %v", rec.Code, rec.Body.String(), rec.Header())
	}
}

func TestJSONHandler(t *testing.T) {
	mount := func(r phttp.Router) {
		r.Post("/params", phttp.JSONHandler(func(_ *http.Request, in nameIn) (any, error) {
			if in.Name == "taken" {
				return nil, perr.Conflictf("exists")
			}
			if in.Name == "new" {
				return phttp.Created(in), nil
			}
			return in, nil
		}))
	}
	cases := []struct {
		body   string
		status int
		field  string
	}{
		{`{"name":"sort"}`, 200, ""},
		{`{"name":"new"}`, 201, ""},
		{`{"name":"taken"}`, 409, ""},
		{`{"name":"a&b"}`, 400, "name"},
		{`nope`, 400, ""},
	}
	for _, c := range cases {
		rec, env := serve(t, mount, http.MethodPost, "/params", c.body)
		if rec.Code != c.status || env.Field != c.field {
			t.Fatalf("%s: got %d %+v", c.body, rec.Code, env)
		}
	}
}

func TestCallHandlerAndGroups(t *testing.T) {
	mount := func(r phttp.Router) {
		r.Route("/api", func(api phttp.Router) {
			api.Group(func(g phttp.Router) {
				g.Use(func(next http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						w.Header().Set("X-Group", "1")
						next.ServeHTTP(w, r)
					})
				})
				g.Get("/files", phttp.CallHandler(func(*http.Request) (any, error) { return []int{1, 2}, nil }))
			})
			api.Handle("/raw", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }))
		})
	}
	rec, env := serve(t, mount, http.MethodGet, "/api/files", "")
	if rec.Code != 200 || rec.Header().Get("X-Group") != "1" || env.Data == nil {
		t.Fatalf("got %d %+v", rec.Code, env)
	}
	if rec, _ := serve(t, mount, http.MethodGet, "/api/raw", ""); rec.Code != http.StatusTeapot {
		t.Fatalf("raw: %d", rec.Code)
	}
	if rec, _ := serve(t, mount, http.MethodPost, "/api/files", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: %d", rec.Code)
	}
}

func TestServerRunStopsOnCancel(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:0")
	srv := phttp.NewServer(config.New())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop")
	}
}

func TestServerRunReportsListenError(t *testing.T) {
	t.Setenv("API_PORT", "127.0.0.1:-1")
	if err := phttp.NewServer(config.New()).Run(context.Background()); err == nil {
		t.Fatalf("expected a listen error")
	}
}
