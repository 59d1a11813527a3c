package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	perr "preloadassist/internal/platform/errors"
	catdom "preloadassist/internal/services/catalog/domain"
	"preloadassist/internal/services/generate/domain"
)

func lines(t *testing.T, h *harness) string {
	t.Helper()
	if len(h.sink.artifacts) == 0 {
		t.Fatalf("no artifact created")
	}
	return strings.Join(h.sink.last().lines, "\n")
}

func TestGenerate_Scenarios(t *testing.T) {
	red := "https://shop.test/shoes/?color=red&sort=price-asc"
	blue := "https://shop.test/shoes/?color=blue&sort=price-asc"
	tests := []struct {
		name      string
		req       domain.Request
		want      []string
		truncated bool
	}{
		{"one facet one param", domain.Request{MaxURLs: 10}, []string{red, blue}, false},
		{"include empty", domain.Request{MaxURLs: 10, IncludeEmpty: true}, []string{"https://shop.test/shoes/", red, blue}, false},
		{"cap of one", domain.Request{MaxURLs: 1}, []string{red}, true},
		{"default cap", domain.Request{}, []string{red, blue}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(shoes())
			res, err := h.svc.Generate(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got := lines(t, h); got != strings.Join(tt.want, "\n") {
				t.Fatalf("got\n%s\nwant\n%s", got, strings.Join(tt.want, "\n"))
			}
			if res.URLCount != int64(len(tt.want)) || res.Truncated != tt.truncated {
				t.Fatalf("unexpected result %+v", res)
			}
			if !h.sink.last().finalized || len(h.reg.recorded) != 1 || h.reg.recorded[0].URLCount != res.URLCount {
				t.Fatalf("artifact not finalized and recorded: %+v", h.reg.recorded)
			}
			if res.FileID != 1 || res.FileName != h.sink.last().name || res.RunID == "" {
				t.Fatalf("result does not identify the artifact: %+v", res)
			}
		})
	}
}

func TestGenerate_CapIsDeterministic(t *testing.T) {
	h := newHarness(shoes())
	ctx := context.Background()
	if _, err := h.svc.Generate(ctx, domain.Request{MaxURLs: 1}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	first := lines(t, h)
	if _, err := h.svc.Generate(ctx, domain.Request{MaxURLs: 1}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second := lines(t, h); second != first {
		t.Fatalf("runs differ: %q vs %q", first, second)
	}
	if h.sink.artifacts[0].name == h.sink.artifacts[1].name {
		t.Fatalf("each run must write a new artifact")
	}
	if res, _ := h.svc.Generate(ctx, domain.Request{MaxURLs: 1}); res.Combinations != "2" {
		t.Fatalf("combinations = %q want 2", res.Combinations)
	}
}

func TestGenerate_NothingToGenerate(t *testing.T) {
	h := newHarness(&fakeSources{})
	_, err := h.svc.Generate(context.Background(), domain.Request{})
	if !errors.Is(err, domain.ErrNothingToGenerate) || !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected nothing to generate, got %v", err)
	}
	if len(h.sink.artifacts) != 0 {
		t.Fatalf("no artifact should be created")
	}

	// include_empty with nothing enabled still emits the site base
	res, err := h.svc.Generate(context.Background(), domain.Request{IncludeEmpty: true})
	if err != nil || res.URLCount != 1 || lines(t, h) != "https://shop.test/" {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestGenerate_SiteSlotWithoutCategories(t *testing.T) {
	src := shoes()
	src.cats = nil
	h := newHarness(src)
	if _, err := h.svc.Generate(context.Background(), domain.Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := "https://shop.test/?color=red&sort=price-asc\nhttps://shop.test/?color=blue&sort=price-asc"
	if got := lines(t, h); got != want {
		t.Fatalf("got\n%s", got)
	}

	h.svc.opt.SiteURL = ""
	if _, err := h.svc.Generate(context.Background(), domain.Request{}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("expected validation error without a site url, got %v", err)
	}
}

func TestGenerate_StorageFailureDiscards(t *testing.T) {
	h := newHarness(shoes())
	h.sink.failAt = 2
	_, err := h.svc.Generate(context.Background(), domain.Request{})
	if !perr.IsCode(err, perr.ErrorCodeStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	a := h.sink.last()
	if !a.discarded || a.finalized {
		t.Fatalf("artifact should be discarded, not finalized")
	}
	if len(h.reg.recorded) != 0 {
		t.Fatalf("failed run must not be recorded")
	}
	runs, _ := h.svc.Runs(context.Background(), 0)
	if len(runs) != 1 || runs[0].Status != domain.StatusFailed || runs[0].Error == "" || runs[0].FileName != "" {
		t.Fatalf("unexpected history %+v", runs)
	}
}

func TestGenerate_CanceledDiscards(t *testing.T) {
	h := newHarness(shoes())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.svc.Generate(ctx, domain.Request{})
	if !perr.IsCode(err, perr.ErrorCodeCanceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if !h.sink.last().discarded || len(h.reg.recorded) != 0 {
		t.Fatalf("canceled run must be discarded and unrecorded")
	}
}

func TestGenerate_Serialized(t *testing.T) {
	h := newHarness(shoes())
	h.svc.mu.Lock()
	_, err := h.svc.Generate(context.Background(), domain.Request{})
	h.svc.mu.Unlock()
	if !errors.Is(err, domain.ErrRunInProgress) || perr.HTTPStatus(err) != 409 {
		t.Fatalf("expected in-process conflict, got %v", err)
	}

	h.lock.busy = true
	if _, err := h.svc.Generate(context.Background(), domain.Request{}); !errors.Is(err, domain.ErrRunInProgress) {
		t.Fatalf("expected cross-process conflict, got %v", err)
	}
	if len(h.sink.artifacts) != 0 {
		t.Fatalf("no run should have started")
	}
}

func TestGenerate_SelectAndHistory(t *testing.T) {
	h := newHarness(shoes())
	res, err := h.svc.Generate(context.Background(), domain.Request{Select: true})
	if err != nil || !res.Selected || !h.reg.recorded[0].Select {
		t.Fatalf("res=%+v err=%v", res, err)
	}
	if h.reg.recorded[0].RunID != res.RunID {
		t.Fatalf("registry run id %q want %q", h.reg.recorded[0].RunID, res.RunID)
	}
	runs, _ := h.svc.Runs(context.Background(), 5)
	if len(runs) != 1 || runs[0].Status != domain.StatusSuccess || runs[0].URLCount != 2 || runs[0].RunID != res.RunID {
		t.Fatalf("unexpected history %+v", runs)
	}
	if !strings.HasPrefix(res.FileName, "preload-urls-") || !strings.HasSuffix(res.FileName, ".txt") {
		t.Fatalf("unexpected file name %q", res.FileName)
	}
}

func TestGenerate_SlotShaping(t *testing.T) {
	tests := []struct {
		name string
		src  func() *fakeSources
		req  domain.Request
		want []string
	}{
		{
			name: "before parameter leads",
			src: func() *fakeSources {
				s := shoes()
				s.params[0].Position = catdom.PositionBefore
				return s
			},
			want: []string{"https://shop.test/shoes/?sort=price-asc&color=red", "https://shop.test/shoes/?sort=price-asc&color=blue"},
		},
		{
			name: "parameter named like a facet is left out",
			src: func() *fakeSources {
				s := shoes()
				s.params = append(s.params, catdom.Parameter{Name: "color", Values: []string{"x", "y"}})
				return s
			},
			want: []string{"https://shop.test/shoes/?color=red&sort=price-asc", "https://shop.test/shoes/?color=blue&sort=price-asc"},
		},
		{
			name: "parameter named like a hierarchy level is left out",
			src: func() *fakeSources {
				return &fakeSources{
					cats:   shoes().cats,
					facets: []catdom.Facet{{Name: "cat", Type: "hierarchy", Values: []string{"men/boots"}}},
					params: []catdom.Parameter{{Name: "cat_level_1", Values: []string{"x", "y"}}},
				}
			},
			want: []string{"https://shop.test/shoes/?cat_level_0=men&cat_level_1=boots"},
		},
		{
			name: "category selection narrows facets and values",
			src: func() *fakeSources {
				s := shoes()
				s.facets = append(s.facets, catdom.Facet{Name: "size", Type: "select", Values: []string{"9", "10"}})
				s.cats[0].Settings = s.cats[0].Settings.WithSelection([]string{"size"}, []string{"none"})
				s.selected = map[int64]map[string][]string{15: {"size": {"10"}}}
				return s
			},
			want: []string{"https://shop.test/shoes/?size=10"},
		},
		{
			name: "empty saved selection keeps only the base url",
			src: func() *fakeSources {
				s := shoes()
				s.cats[0].Settings = s.cats[0].Settings.WithSelection([]string{}, []string{})
				return s
			},
			want: []string{"https://shop.test/shoes/"},
		},
		{
			name: "facet named like an earlier hierarchy level is left out",
			src: func() *fakeSources {
				return &fakeSources{
					cats: shoes().cats,
					facets: []catdom.Facet{
						{Name: "cat", Type: "hierarchy", Values: []string{"men/boots"}},
						{Name: "cat_level_0", Type: "select", Values: []string{"a", "b"}},
					},
				}
			},
			want: []string{"https://shop.test/shoes/?cat_level_0=men&cat_level_1=boots"},
		},
		{
			name: "hierarchy whose levels clash with an earlier facet is left out",
			src: func() *fakeSources {
				return &fakeSources{
					cats: shoes().cats,
					facets: []catdom.Facet{
						{Name: "cat_level_0", Type: "select", Values: []string{"a", "b"}},
						{Name: "cat", Type: "hierarchy", Values: []string{"men/boots"}},
					},
				}
			},
			want: []string{"https://shop.test/shoes/?cat_level_0=a", "https://shop.test/shoes/?cat_level_0=b"},
		},
		{
			name: "range values encoding alike collapse",
			src: func() *fakeSources {
				return &fakeSources{
					cats:   shoes().cats,
					facets: []catdom.Facet{{Name: "price", Type: "slider", Values: []string{"1,2,3", "1,2,4", "5,6"}}},
				}
			},
			want: []string{"https://shop.test/shoes/?price=1%2C2", "https://shop.test/shoes/?price=5%2C6"},
		},
		{
			name: "category without url uses site base and duplicate urls collapse",
			src: func() *fakeSources {
				s := shoes()
				s.params = nil
				s.facets = nil
				s.cats = append(s.cats,
					catdom.Category{ID: 16, Name: "Boots", Slug: "boots"},
					catdom.Category{ID: 17, Name: "Shoes again", Slug: "x", CanonicalURL: "https://shop.test/shoes/"},
				)
				return s
			},
			want: []string{"https://shop.test/shoes/", "https://shop.test/boots/"},
		},
		{
			name: "category filter",
			src: func() *fakeSources {
				s := shoes()
				s.cats = append(s.cats, catdom.Category{ID: 16, Slug: "boots"})
				return s
			},
			req:  domain.Request{Categories: []int64{16}, Facets: []string{"none"}, Parameters: []string{"sort"}},
			want: []string{"https://shop.test/boots/?sort=price-asc"},
		},
		{
			name: "allow partial",
			src:  shoes,
			req:  domain.Request{AllowPartial: true},
			want: []string{
				"https://shop.test/shoes/?sort=price-asc",
				"https://shop.test/shoes/?color=red",
				"https://shop.test/shoes/?color=red&sort=price-asc",
				"https://shop.test/shoes/?color=blue",
				"https://shop.test/shoes/?color=blue&sort=price-asc",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.src())
			res, err := h.svc.Generate(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got := lines(t, h); got != strings.Join(tt.want, "\n") {
				t.Fatalf("got\n%s\nwant\n%s", got, strings.Join(tt.want, "\n"))
			}
			if res.URLCount != int64(len(tt.want)) {
				t.Fatalf("URLCount = %d", res.URLCount)
			}
		})
	}
}

func TestGenerate_RecordsStoragePath(t *testing.T) {
	h := newHarness(shoes())
	res, err := h.svc.Generate(context.Background(), domain.Request{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(h.reg.recorded) != 1 {
		t.Fatalf("recorded %d files", len(h.reg.recorded))
	}
	if got, want := h.reg.recorded[0].StoragePath, "/srv/preload/"+res.FileName; got != want {
		t.Fatalf("storage path %q, want %q", got, want)
	}
}

func TestGenerate_RegistryFailureRemovesArtifact(t *testing.T) {
	h := newHarness(shoes())
	h.reg.err = errors.New("db down")
	if _, err := h.svc.Generate(context.Background(), domain.Request{}); err == nil {
		t.Fatal("expected registry error")
	}
	a := h.sink.last()
	if !a.finalized || !a.removed {
		t.Fatalf("finalized=%v removed=%v", a.finalized, a.removed)
	}
}

func TestRuns_Limits(t *testing.T) {
	h := newHarness(shoes())
	for i := 0; i < 3; i++ {
		if _, err := h.svc.Generate(context.Background(), domain.Request{}); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	runs, err := h.svc.Runs(context.Background(), 2)
	if err != nil || len(runs) != 2 {
		t.Fatalf("runs=%v err=%v", runs, err)
	}
	runs, _ = h.svc.Runs(context.Background(), -1)
	if len(runs) != 3 {
		t.Fatalf("default limit should return all 3, got %d", len(runs))
	}
}

func TestNew_PanicsOnMissingDeps(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(nil, nil, nil, nil, nil, Options{})
}
