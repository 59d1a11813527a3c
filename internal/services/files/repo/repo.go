// Package repo provides the postgres file registry
package repo

import (
	"context"

	"preloadassist/internal/modkit/repokit"
	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/store"
	"preloadassist/internal/services/files/domain"
)

// Repo defines the repository contract for generated files
type Repo interface {
	Insert(ctx context.Context, in domain.NewFile) (domain.File, error)
	// List returns files newest first
	List(ctx context.Context) ([]domain.File, error)
	Get(ctx context.Context, id int64) (domain.File, error)
	Selected(ctx context.Context) (domain.File, error)
	ClearSelected(ctx context.Context) error
	MarkSelected(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const fileCols = `id, file_name, storage_path, size_bytes, url_count, is_selected, coalesce(run_id::text, ''), generated_at`

func scanFile(r store.Row) (domain.File, error) {
	var f domain.File
	err := r.Scan(&f.ID, &f.FileName, &f.StoragePath, &f.SizeBytes, &f.URLCount, &f.IsSelected, &f.RunID, &f.GeneratedAt)
	return f, err
}

func (r *queries) Insert(ctx context.Context, in domain.NewFile) (domain.File, error) {
	const sql = `
insert into preload_files (file_name, storage_path, size_bytes, url_count, run_id)
values ($1, $2, $3, $4, nullif($5, '')::uuid)
returning ` + fileCols
	return store.One(ctx, r.q, scanFile, sql, in.FileName, in.StoragePath, in.SizeBytes, in.URLCount, in.RunID)
}

func (r *queries) List(ctx context.Context) ([]domain.File, error) {
	return store.Many(ctx, r.q, scanFile, `select `+fileCols+` from preload_files order by generated_at desc, id desc`)
}

func (r *queries) Get(ctx context.Context, id int64) (domain.File, error) {
	return store.One(ctx, r.q, scanFile, `select `+fileCols+` from preload_files where id = $1`, id)
}

func (r *queries) Selected(ctx context.Context) (domain.File, error) {
	return store.One(ctx, r.q, scanFile, `select `+fileCols+` from preload_files where is_selected limit 1`)
}

func (r *queries) ClearSelected(ctx context.Context) error {
	_, err := r.q.Exec(ctx, `update preload_files set is_selected = false where is_selected`)
	return err
}

func (r *queries) MarkSelected(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `update preload_files set is_selected = true where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return perr.ErrNotFound
	}
	return nil
}

func (r *queries) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `delete from preload_files where id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return perr.ErrNotFound
	}
	return nil
}

func (r *queries) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.q.Exec(ctx, `delete from preload_files`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
