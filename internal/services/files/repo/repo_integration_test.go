//go:build integration_pg

package repo

import (
	"context"
	"testing"
	"time"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/store"
	"preloadassist/internal/platform/store/migrate"
	kit "preloadassist/internal/platform/testkit"
	"preloadassist/internal/services/files/domain"
)

func TestFilesRepo_Integration(t *testing.T) {
	dsn := kit.StartPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s, err := store.Open(ctx, store.Config{PG: store.PGConfig{Enabled: true, URL: dsn}})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close(context.Background()) }()
	if err := migrate.Apply(ctx, s.PG); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	r := NewPG().Bind(s.PG)

	a, err := r.Insert(ctx, domain.NewFile{FileName: "a.txt", StoragePath: "/tmp/a.txt", SizeBytes: 10, URLCount: 2, RunID: "8c0c6a0e-5b7e-4f43-9d55-0f3c0f2a9d11"})
	if err != nil || a.ID == 0 || a.RunID == "" {
		t.Fatalf("insert: %+v %v", a, err)
	}
	b, err := r.Insert(ctx, domain.NewFile{FileName: "b.txt", StoragePath: "/tmp/b.txt"})
	if err != nil || b.RunID != "" {
		t.Fatalf("insert without run: %+v %v", b, err)
	}
	if _, err := r.Insert(ctx, domain.NewFile{FileName: "a.txt", StoragePath: "/tmp/a.txt"}); !perr.IsDuplicateKey(err) {
		t.Fatalf("want duplicate key, got %v", err)
	}

	if _, err := r.Selected(ctx); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if err := r.MarkSelected(ctx, a.ID); err != nil {
		t.Fatalf("select a: %v", err)
	}
	// a second selected row violates the partial unique index
	if err := r.MarkSelected(ctx, b.ID); !perr.IsDuplicateKey(err) {
		t.Fatalf("want duplicate key, got %v", err)
	}
	if err := r.ClearSelected(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := r.MarkSelected(ctx, b.ID); err != nil {
		t.Fatalf("select b: %v", err)
	}
	sel, err := r.Selected(ctx)
	if err != nil || sel.ID != b.ID {
		t.Fatalf("selected: %+v %v", sel, err)
	}

	list, err := r.List(ctx)
	if err != nil || len(list) != 2 || list[0].ID != b.ID {
		t.Fatalf("list: %+v %v", list, err)
	}
	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(ctx, a.ID); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if n, err := r.DeleteAll(ctx); err != nil || n != 1 {
		t.Fatalf("delete all: %d %v", n, err)
	}
}
