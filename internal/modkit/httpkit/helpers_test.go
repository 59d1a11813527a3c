package httpkit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "preloadassist/internal/platform/net/http"
)

// mkReq builds an *http.Request with an optional body
func mkReq(t *testing.T, method string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, "http://x.test/y", body)
	if err != nil {
		t.Fatalf("mkReq: %v", err)
	}
	return req
}

// run executes a Handler and returns status code and body
func run(h Handler, r *http.Request) (int, string) {
	rec := httptest.NewRecorder()
	h(rec, r)
	res := rec.Result()
	defer func() { _ = res.Body.Close() }()

	b, _ := io.ReadAll(res.Body)
	return rec.Code, string(b)
}

type verbCall struct {
	verb string
	path string
	ph   phttp.Handler
	h    http.Handler
}

// fakeRouter records registrations instead of serving them
type fakeRouter struct {
	verbCalls []verbCall
}

func (f *fakeRouter) Get(path string, h phttp.Handler) {
	f.verbCalls = append(f.verbCalls, verbCall{"GET", path, h, nil})
}

func (f *fakeRouter) Post(path string, h phttp.Handler) {
	f.verbCalls = append(f.verbCalls, verbCall{"POST", path, h, nil})
}

func (f *fakeRouter) Delete(path string, h phttp.Handler) {
	f.verbCalls = append(f.verbCalls, verbCall{"DELETE", path, h, nil})
}

func (f *fakeRouter) Handle(path string, h http.Handler) {
	f.verbCalls = append(f.verbCalls, verbCall{"HANDLE", path, nil, h})
}

func (f *fakeRouter) Use(...func(http.Handler) http.Handler) {}
func (f *fakeRouter) Group(fn func(Router))                  { fn(f) }
func (f *fakeRouter) Route(_ string, fn func(Router))        { fn(f) }
