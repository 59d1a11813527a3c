// Package service contains the generated files workflows: registry, reads, export and retention
package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"preloadassist/internal/modkit/repokit"
	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
	"preloadassist/internal/services/files/domain"
	"preloadassist/internal/services/files/repo"
	"preloadassist/internal/services/files/storage"
)

// Service defines the service contract for files
type Service interface{ domain.ServicePort }

// Options configures reads and exports
type Options struct {
	PublicBaseURL string // where the artifact directory is served, empty disables Export
	PreviewLimit  int    // default page size for Preview
	Keep          int    // retention default
}

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
	fs     *storage.FS
	opt    Options
}

var _ Service = (*Svc)(nil)

// New creates a new files service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], fs *storage.FS, opt Options) *Svc {
	if db == nil {
		panic("files.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("files.Service requires a non nil Repo binder")
	}
	if fs == nil {
		panic("files.Service requires a storage directory")
	}
	if opt.PreviewLimit <= 0 {
		opt.PreviewLimit = 100
	}
	if opt.Keep <= 0 {
		opt.Keep = 5
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db, fs: fs, opt: opt}
}

func dbErr(err error, msg string) error {
	if err == nil || perr.IsCode(err, perr.ErrorCodeNotFound) {
		return err
	}
	return perr.FromPostgres(err, msg)
}

func notFound(err error, id int64) error {
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return perr.NotFoundf("file %d not found", id)
	}
	return dbErr(err, "file query")
}

// Record registers a finalized artifact, optionally selecting it in the same transaction
// A missing storage path defaults to the file's place in the artifact directory
func (s *Svc) Record(ctx context.Context, in domain.NewFile) (domain.File, error) {
	if in.StoragePath == "" {
		in.StoragePath = s.fs.Path(in.FileName)
	}
	var out domain.File
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		f, err := r.Insert(ctx, in)
		if err != nil {
			return dbErr(err, "record file")
		}
		if in.Select {
			if err := r.ClearSelected(ctx); err != nil {
				return dbErr(err, "clear selection")
			}
			if err := r.MarkSelected(ctx, f.ID); err != nil {
				return notFound(err, f.ID)
			}
			f.IsSelected = true
		}
		out = f
		return nil
	})
	return out, err
}

// List returns every file, newest first
func (s *Svc) List(ctx context.Context) ([]domain.File, error) {
	out, err := s.Repo.List(ctx)
	return out, dbErr(err, "list files")
}

// Get returns one file row
func (s *Svc) Get(ctx context.Context, id int64) (domain.File, error) {
	f, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.File{}, notFound(err, id)
	}
	return f, nil
}

// Selected returns the file chosen for preloading
func (s *Svc) Selected(ctx context.Context) (domain.File, error) {
	f, err := s.Repo.Selected(ctx)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.File{}, perr.NotFoundf("no file selected")
	}
	return f, dbErr(err, "selected file")
}

// Select makes id the only selected file
func (s *Svc) Select(ctx context.Context, id int64) (domain.File, error) {
	var out domain.File
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		f, err := r.Get(ctx, id)
		if err != nil {
			return notFound(err, id)
		}
		if err := r.ClearSelected(ctx); err != nil {
			return dbErr(err, "clear selection")
		}
		if err := r.MarkSelected(ctx, id); err != nil {
			return notFound(err, id)
		}
		f.IsSelected = true
		out = f
		return nil
	})
	return out, err
}

// Delete removes the artifact from disk, then its row
func (s *Svc) Delete(ctx context.Context, id int64) error {
	f, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(f.FileName); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return notFound(err, id)
	}
	logger.C(ctx).Info().Int64("file_id", id).Str("file", f.FileName).Msg("files: deleted")
	return nil
}

// DeleteAll removes every artifact and registry row
func (s *Svc) DeleteAll(ctx context.Context) (int, error) {
	n, err := s.fs.RemoveAll()
	if err != nil {
		return n, err
	}
	if _, err := s.Repo.DeleteAll(ctx); err != nil {
		return n, dbErr(err, "delete files")
	}
	return n, nil
}

// Exists reports whether f is on disk
func (s *Svc) Exists(f domain.File) bool { return s.fs.Exists(f.FileName) }

// Preview returns a window of trimmed lines
func (s *Svc) Preview(ctx context.Context, id int64, limit, offset int) (domain.Preview, error) {
	if limit <= 0 {
		limit = s.opt.PreviewLimit
	}
	if offset < 0 {
		offset = 0
	}
	f, err := s.Get(ctx, id)
	if err != nil {
		return domain.Preview{}, err
	}
	lines, err := s.fs.Window(f.FileName, limit, offset)
	if err != nil {
		return domain.Preview{}, err
	}
	return domain.Preview{File: f, Lines: lines, Offset: offset, Limit: limit}, nil
}

// Count returns the number of non-empty lines in the artifact
func (s *Svc) Count(ctx context.Context, id int64) (int64, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.fs.Each(f.FileName, func(string) error { n++; return nil })
	return n, err
}

// Lines returns every non-empty trimmed line of the artifact
func (s *Svc) Lines(ctx context.Context, id int64) ([]string, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, f.URLCount)
	err = s.fs.Each(f.FileName, func(l string) error { out = append(out, l); return nil })
	return out, err
}

// Export returns a public download URL for the artifact
func (s *Svc) Export(ctx context.Context, id int64) (domain.Export, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return domain.Export{}, err
	}
	if !s.fs.Exists(f.FileName) {
		return domain.Export{}, perr.NotFoundf("file %d is missing on disk", id)
	}
	if s.opt.PublicBaseURL == "" {
		return domain.Export{}, perr.Unavailablef("public base url is not configured")
	}
	return domain.Export{
		URL:      strings.TrimRight(s.opt.PublicBaseURL, "/") + "/" + f.FileName,
		FileName: f.FileName,
	}, nil
}

// Cleanup keeps the newest keep files and deletes the rest, never the selected one
// keep <= 0 uses the configured default
func (s *Svc) Cleanup(ctx context.Context, keep int) (domain.CleanupResult, error) {
	if keep <= 0 {
		keep = s.opt.Keep
	}
	files, err := s.List(ctx)
	if err != nil {
		return domain.CleanupResult{}, err
	}
	deleted := 0
	for i := keep; i < len(files); i++ {
		if files[i].IsSelected {
			continue
		}
		if err := s.Delete(ctx, files[i].ID); err != nil {
			logger.C(ctx).Warn().Err(err).Int64("file_id", files[i].ID).Msg("files: cleanup delete failed")
			continue
		}
		deleted++
	}
	rest, err := s.List(ctx)
	if err != nil {
		return domain.CleanupResult{}, err
	}
	logger.C(ctx).Info().Int("deleted", deleted).Int("keep", keep).Msg("files: cleanup done")
	return domain.CleanupResult{Deleted: deleted, Files: rest}, nil
}

// RunCleanupLoop runs Cleanup every interval until ctx ends
func (s *Svc) RunCleanupLoop(ctx context.Context, every time.Duration, keep int) error {
	log := logger.Named("files-cleanup")
	if every <= 0 {
		every = 24 * time.Hour
	}
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := s.Cleanup(ctx, keep); err != nil {
				log.Error().Err(err).Msg("scheduled cleanup failed")
			}
		}
	}
}

// DirectoryInfo summarizes the artifact directory
func (s *Svc) DirectoryInfo(_ context.Context) (domain.DirectoryInfo, error) {
	total, n, err := s.fs.Usage()
	if err != nil {
		return domain.DirectoryInfo{}, err
	}
	return domain.DirectoryInfo{
		Directory:     s.fs.Dir(),
		TotalSize:     total,
		FormattedSize: FormatSize(total),
		FileCount:     n,
	}, nil
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders bytes with 1024 steps and at most 2 decimals, e.g. "1.5 KB"
func FormatSize(n int64) string {
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}
