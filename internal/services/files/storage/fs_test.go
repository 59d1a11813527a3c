package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perr "preloadassist/internal/platform/errors"
)

func newFS(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(filepath.Join(t.TempDir(), "preload"))
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func write(t *testing.T, s *FS, name string, lines ...string) int64 {
	t.Helper()
	a, err := s.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, l := range lines {
		if err := a.AppendLine(l); err != nil {
			t.Fatalf("AppendLine: %v", err)
		}
	}
	n, err := a.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return n
}

func TestArtifact_InvisibleUntilFinalize(t *testing.T) {
	s := newFS(t)
	a, err := s.Create(context.Background(), "urls.txt")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_ = a.AppendLine("https://shop.test/a/")
	if s.Exists("urls.txt") {
		t.Fatal("artifact visible before Finalize")
	}
	if _, n, _ := s.Usage(); n != 0 {
		t.Fatalf("temp file counted in usage: %d", n)
	}

	size, err := a.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if size != int64(len("https://shop.test/a/\n")) || !s.Exists("urls.txt") {
		t.Fatalf("size %d exists %v", size, s.Exists("urls.txt"))
	}
	if err := a.AppendLine("late"); !perr.IsCode(err, perr.ErrorCodeStorage) {
		t.Fatalf("append after finalize: %v", err)
	}
	if err := a.Discard(); err != nil {
		t.Fatalf("Discard after Finalize should be a no-op: %v", err)
	}
	if !s.Exists("urls.txt") {
		t.Fatal("Discard after Finalize removed the artifact")
	}
}

func TestArtifact_DiscardLeavesNothing(t *testing.T) {
	s := newFS(t)
	a, _ := s.Create(context.Background(), "gone.txt")
	_ = a.AppendLine("x")
	if err := a.Discard(); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Fatalf("leftover files: %v", entries)
	}
}

func TestArtifact_PathAndRemove(t *testing.T) {
	s := newFS(t)
	a, err := s.Create(context.Background(), "kept.txt")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.Path() != filepath.Join(s.Dir(), "kept.txt") {
		t.Fatalf("path %q", a.Path())
	}
	_ = a.AppendLine("x")
	if _, err := a.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if err := a.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Exists("kept.txt") {
		t.Fatal("finalized artifact still present after Remove")
	}
	if err := a.Remove(); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, n, _ := s.Usage(); n != 0 {
		t.Fatalf("usage still counts %d files", n)
	}
}

func TestCreate_RejectsBadNamesAndDuplicates(t *testing.T) {
	s := newFS(t)
	for _, name := range []string{"", "../x.txt", "a/b.txt", ".hidden"} {
		if _, err := s.Create(context.Background(), name); !perr.IsCode(err, perr.ErrorCodeValidation) {
			t.Fatalf("%q: want validation, got %v", name, err)
		}
	}
	write(t, s, "dup.txt", "a")
	if _, err := s.Create(context.Background(), "dup.txt"); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestWindowAndEach(t *testing.T) {
	s := newFS(t)
	write(t, s, "w.txt", "a", " b ", "", "c", "d")

	got, err := s.Window("w.txt", 2, 1)
	if err != nil || strings.Join(got, ",") != "b," {
		t.Fatalf("got %q, %v", got, err)
	}
	got, _ = s.Window("w.txt", 100, 3)
	if strings.Join(got, ",") != "c,d" {
		t.Fatalf("got %q", got)
	}

	var all []string
	if err := s.Each("w.txt", func(l string) error { all = append(all, l); return nil }); err != nil {
		t.Fatalf("Each: %v", err)
	}
	if strings.Join(all, ",") != "a,b,c,d" {
		t.Fatalf("got %q", all)
	}

	if _, err := s.Window("missing.txt", 1, 0); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestUsageRemoveAll(t *testing.T) {
	s := newFS(t)
	write(t, s, "a.txt", "12345")
	write(t, s, "b.txt", "1")
	_ = os.WriteFile(filepath.Join(s.Dir(), ".keep"), []byte("x"), 0o644)

	total, n, err := s.Usage()
	if err != nil || n != 2 || total != 8 {
		t.Fatalf("usage %d %d %v", total, n, err)
	}
	if err := s.Remove("a.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove("a.txt"); err != nil {
		t.Fatalf("Remove missing should be fine: %v", err)
	}
	removed, err := s.RemoveAll()
	if err != nil || removed != 1 {
		t.Fatalf("RemoveAll %d %v", removed, err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), ".keep")); err != nil {
		t.Fatalf("hidden file should survive: %v", err)
	}
}

func TestPing(t *testing.T) {
	s := newFS(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if left, _ := os.ReadDir(s.Dir()); len(left) != 0 {
		t.Fatalf("ping left %d entries behind", len(left))
	}
	if err := os.RemoveAll(s.Dir()); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(context.Background()); err == nil {
		t.Fatalf("expected error for a missing directory")
	}
}
