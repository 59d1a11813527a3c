package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/services/catalog/domain"
)

func TestNew_PanicsOnNil(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(nil, nil, Options{})
}

func TestSyncCategories_CountsAndKeepsFlags(t *testing.T) {
	ctx := context.Background()
	s, m, tx := newSvc(Options{})

	in := []domain.CategoryInput{
		{ID: 1, Name: "Shoes", Slug: "shoes"},
		{ID: 2, Name: "Running", Slug: "running", ParentID: 1},
	}
	res, err := s.SyncCategories(ctx, in)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res != (domain.SyncResult{Inserted: 2, Updated: 0, Total: 2}) {
		t.Fatalf("unexpected result %+v", res)
	}
	if tx.txs != 1 {
		t.Fatalf("expected one tx, got %d", tx.txs)
	}

	if _, err := s.SetCategoryEnabled(ctx, 1, true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	in[0].Name = "Footwear"
	res, err = s.SyncCategories(ctx, in)
	if err != nil {
		t.Fatalf("resync: %v", err)
	}
	if res.Inserted != 0 || res.Updated != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if c := m.cats[1]; !c.Enabled || c.Name != "Footwear" {
		t.Fatalf("sync should keep enabled and refresh name, got %+v", c)
	}
}

func TestSetCategoryEnabled_KeepsSettings(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSvc(Options{})
	_, _ = s.SyncCategories(ctx, []domain.CategoryInput{{ID: 7, Name: "Bags", Slug: "bags"}})

	if _, err := s.SaveCategorySettings(ctx, 7, domain.SettingsInput{SelectedFacets: []string{"color", "color", ""}}); err != nil {
		t.Fatalf("settings: %v", err)
	}
	c, err := s.SetCategoryEnabled(ctx, 7, false)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if len(c.Settings.SelectedFacets) != 1 || c.Settings.SelectedFacets[0] != "color" {
		t.Fatalf("settings lost or not deduped: %+v", c.Settings)
	}

	if _, err := s.SetCategoryEnabled(ctx, 99, true); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestSaveCategorySettings_PreservesUnknownKeys(t *testing.T) {
	ctx := context.Background()
	s, m, _ := newSvc(Options{})
	_, _ = s.SyncCategories(ctx, []domain.CategoryInput{{ID: 3, Name: "Hats", Slug: "hats"}})

	var cs domain.CategorySettings
	if err := json.Unmarshal([]byte(`{"selected_facets":["a"],"legacy":{"x":1}}`), &cs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	c := m.cats[3]
	c.Settings = cs
	m.cats[3] = c

	got, err := s.SaveCategorySettings(ctx, 3, domain.SettingsInput{SelectedParameters: []string{"sort"}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	b, _ := json.Marshal(got.Settings)
	if !strings.Contains(string(b), `"legacy":{"x":1}`) || !strings.Contains(string(b), `"selected_parameters":["sort"]`) {
		t.Fatalf("unexpected settings json %s", b)
	}
	if !strings.Contains(string(b), `"selected_facets":[]`) {
		t.Fatalf("facets should be cleared, got %s", b)
	}
}

func TestCategorySettings_SavedSurvivesRoundTrip(t *testing.T) {
	tests := []struct {
		in        string
		saved     bool
		roundTrip string
	}{
		{`{}`, false, `{}`},
		{`{"legacy":1}`, false, `{"legacy":1}`},
		{`{"selected_facets":[]}`, true, `{"selected_facets":[],"selected_parameters":[]}`},
		{`{"selected_parameters":["sort"]}`, true, `{"selected_facets":[],"selected_parameters":["sort"]}`},
	}
	for _, tt := range tests {
		var cs domain.CategorySettings
		if err := json.Unmarshal([]byte(tt.in), &cs); err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if cs.Saved() != tt.saved {
			t.Fatalf("%s: saved = %v", tt.in, cs.Saved())
		}
		b, _ := json.Marshal(cs)
		if string(b) != tt.roundTrip {
			t.Fatalf("%s: marshaled %s", tt.in, b)
		}
	}
	if !(domain.CategorySettings{}).WithSelection(nil, nil).Saved() {
		t.Fatal("an explicit empty selection must count as saved")
	}
}

func TestCategoryURL_FallsBackToSlug(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSvc(Options{SiteURL: "https://shop.test/"})
	_, _ = s.SyncCategories(ctx, []domain.CategoryInput{
		{ID: 1, Name: "Shoes", Slug: "shoes"},
		{ID: 2, Name: "Sale", Slug: "sale", CanonicalURL: "https://shop.test/deals/"},
	})

	u, err := s.CategoryURL(ctx, 1)
	if err != nil || u != "https://shop.test/shoes/" {
		t.Fatalf("got %q, %v", u, err)
	}
	u, err = s.CategoryURL(ctx, 2)
	if err != nil || u != "https://shop.test/deals/" {
		t.Fatalf("got %q, %v", u, err)
	}
	if _, err := s.CategoryURL(ctx, 3); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestEnabledCategories_Filter(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSvc(Options{SiteURL: "https://shop.test"})
	_, _ = s.SyncCategories(ctx, []domain.CategoryInput{
		{ID: 1, Name: "A", Slug: "a"},
		{ID: 2, Name: "B", Slug: "b"},
		{ID: 3, Name: "C", Slug: "c"},
	})
	_, _ = s.SetCategoryEnabled(ctx, 1, true)
	_, _ = s.SetCategoryEnabled(ctx, 2, true)

	all, err := s.EnabledCategories(ctx, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("got %d, %v", len(all), err)
	}
	if all[0].CanonicalURL != "https://shop.test/a/" {
		t.Fatalf("url not derived: %q", all[0].CanonicalURL)
	}
	some, _ := s.EnabledCategories(ctx, []int64{2, 3})
	if len(some) != 1 || some[0].ID != 2 {
		t.Fatalf("unexpected filter result %+v", some)
	}
}

func TestBuildTree(t *testing.T) {
	cats := []domain.Category{
		{ID: 4, Name: "Trail", ParentID: 2},
		{ID: 1, Name: "Shoes"},
		{ID: 2, Name: "Running", ParentID: 1},
		{ID: 3, Name: "Boots", ParentID: 1},
		{ID: 5, Name: "Orphan", ParentID: 42},
		{ID: 6, Name: "Self", ParentID: 6},
	}
	got := BuildTree(cats)
	var b strings.Builder
	for _, it := range got {
		b.WriteString(strings.Repeat("-", it.Depth))
		b.WriteString(it.Name)
		b.WriteString(";")
	}
	want := "Orphan;Self;Shoes;-Boots;-Running;--Trail;"
	if b.String() != want {
		t.Fatalf("got %q want %q", b.String(), want)
	}
}

func TestBuildTree_CycleTerminates(t *testing.T) {
	cats := []domain.Category{
		{ID: 1, Name: "A", ParentID: 2},
		{ID: 2, Name: "B", ParentID: 1},
	}
	got := BuildTree(cats)
	if len(got) != 2 || got[0].Name != "A" || got[0].Depth != 0 || got[1].Name != "B" || got[1].Depth != 1 {
		t.Fatalf("unexpected tree %+v", got)
	}
}

func TestSettings_Default(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newSvc(Options{})
	v, err := s.GetSetting(ctx, "missing", "def")
	if err != nil || v != "def" {
		t.Fatalf("got %q, %v", v, err)
	}
	if err := s.SaveSetting(ctx, "k", "v"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if v, _ := s.GetSetting(ctx, "k", "def"); v != "v" {
		t.Fatalf("got %q", v)
	}
	if err := s.SaveSetting(ctx, "", "v"); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}
