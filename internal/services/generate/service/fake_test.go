package service

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"

	catdom "preloadassist/internal/services/catalog/domain"
	fdom "preloadassist/internal/services/files/domain"
	"preloadassist/internal/services/generate/domain"
	"preloadassist/internal/services/generate/runlog"
)

type fakeSources struct {
	cats     []catdom.Category
	facets   []catdom.Facet
	params   []catdom.Parameter
	selected map[int64]map[string][]string
}

func (f *fakeSources) EnabledCategories(_ context.Context, ids []int64) ([]catdom.Category, error) {
	var out []catdom.Category
	for _, c := range f.cats {
		if len(ids) == 0 || slices.Contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSources) EnabledFacets(_ context.Context, names []string) ([]catdom.Facet, error) {
	var out []catdom.Facet
	for _, x := range f.facets {
		if len(names) == 0 || slices.Contains(names, x.Name) {
			out = append(out, x)
		}
	}
	return out, nil
}

func (f *fakeSources) SelectedValues(_ context.Context, categoryID int64, facet string) ([]string, error) {
	if v, ok := f.selected[categoryID][facet]; ok {
		return v, nil
	}
	for _, x := range f.facets {
		if x.Name == facet {
			return x.Values, nil
		}
	}
	return nil, nil
}

func (f *fakeSources) EnabledParameters(_ context.Context, names []string) ([]catdom.Parameter, error) {
	var out []catdom.Parameter
	for _, p := range f.params {
		if len(names) == 0 || slices.Contains(names, p.Name) {
			out = append(out, p)
		}
	}
	return out, nil
}

// memArtifact buffers lines; failAt > 0 fails the failAt-th append
type memArtifact struct {
	name      string
	lines     []string
	failAt    int
	finalized bool
	discarded bool
	removed   bool
}

func (a *memArtifact) Name() string { return a.name }

func (a *memArtifact) Path() string { return "/srv/preload/" + a.name }

func (a *memArtifact) AppendLine(line string) error {
	if a.failAt > 0 && len(a.lines)+1 == a.failAt {
		return errors.New("disk full")
	}
	a.lines = append(a.lines, line)
	return nil
}

func (a *memArtifact) Finalize() (int64, error) {
	a.finalized = true
	var n int64
	for _, l := range a.lines {
		n += int64(len(l)) + 1
	}
	return n, nil
}

func (a *memArtifact) Discard() error {
	if !a.finalized {
		a.discarded = true
	}
	return nil
}

func (a *memArtifact) Remove() error {
	a.removed = true
	return nil
}

type memSink struct {
	failAt    int
	artifacts []*memArtifact
}

func (s *memSink) Create(_ context.Context, name string) (fdom.Artifact, error) {
	a := &memArtifact{name: name, failAt: s.failAt}
	s.artifacts = append(s.artifacts, a)
	return a, nil
}

func (s *memSink) last() *memArtifact { return s.artifacts[len(s.artifacts)-1] }

type fakeRegistry struct {
	recorded []fdom.NewFile
	err      error
}

func (r *fakeRegistry) Record(_ context.Context, in fdom.NewFile) (fdom.File, error) {
	if r.err != nil {
		return fdom.File{}, r.err
	}
	r.recorded = append(r.recorded, in)
	return fdom.File{
		ID:         int64(len(r.recorded)),
		FileName:   in.FileName,
		SizeBytes:  in.SizeBytes,
		URLCount:   in.URLCount,
		RunID:      in.RunID,
		IsSelected: in.Select,
	}, nil
}

type fakeLock struct {
	busy  bool
	holds int
}

func (l *fakeLock) Hold(ctx context.Context, do func(context.Context) error) error {
	if l.busy {
		return domain.ErrRunInProgress
	}
	l.holds++
	return do(ctx)
}

type harness struct {
	svc  *Svc
	src  *fakeSources
	sink *memSink
	reg  *fakeRegistry
	lock *fakeLock
	runs *runlog.Memory
}

func newHarness(src *fakeSources) *harness {
	h := &harness{src: src, sink: &memSink{}, reg: &fakeRegistry{}, lock: &fakeLock{}, runs: runlog.NewMemory(10)}
	h.svc = New(h.src, h.sink, h.reg, h.lock, h.runs, Options{SiteURL: "https://shop.test"})
	var mu sync.Mutex
	var n byte
	h.svc.newID = func() uuid.UUID {
		mu.Lock()
		defer mu.Unlock()
		n++
		return uuid.UUID{n}
	}
	return h
}

// shoes is one category, one facet with two values and one trailing parameter
func shoes() *fakeSources {
	return &fakeSources{
		cats: []catdom.Category{{ID: 15, Name: "Shoes", Slug: "shoes", CanonicalURL: "https://shop.test/shoes/", Enabled: true}},
		facets: []catdom.Facet{
			{Name: "color", Type: "select", Enabled: true, Values: []string{"red", "blue"}},
		},
		params: []catdom.Parameter{
			{Name: "sort", Values: []string{"price-asc"}, Enabled: true, Position: catdom.PositionAfter},
		},
	}
}
