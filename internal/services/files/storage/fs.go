// Package storage keeps generated URL lists on the local filesystem
// Artifacts are written to a hidden temp file and renamed into place on Finalize,
// so a listed name always refers to a complete file
package storage

import (
	"bufio"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/services/files/domain"
)

const (
	tmpPrefix = "."
	tmpSuffix = ".tmp"
	bufSize   = 64 << 10
)

// FS stores artifacts under one directory
type FS struct {
	dir string
}

var _ domain.Sink = (*FS)(nil)

// NewFS creates dir when missing
func NewFS(dir string) (*FS, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, perr.Validationf("files directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, perr.WrapStorage(err, "resolve files directory")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, perr.WrapStorage(err, "create files directory")
	}
	return &FS{dir: abs}, nil
}

// Dir returns the absolute artifact directory
func (s *FS) Dir() string { return s.dir }

// Ping reports whether the directory still exists and accepts new files
func (s *FS) Ping(_ context.Context) error {
	f, err := os.CreateTemp(s.dir, tmpPrefix+"ping-*"+tmpSuffix)
	if err != nil {
		return perr.WrapStorage(err, "files directory not writable")
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// Path returns where name lives once finalized
func (s *FS) Path(name string) string { return filepath.Join(s.dir, name) }

// validName rejects anything that could escape the directory or collide with temp files
func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, tmpPrefix) || strings.ContainsAny(name, `/\`) {
		return perr.Validationf("invalid artifact name %q", name)
	}
	return nil
}

// Create opens a temp file for name
func (s *FS) Create(_ context.Context, name string) (domain.Artifact, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.Path(name)); err == nil {
		return nil, perr.Conflictf("artifact %q already exists", name)
	}
	tmp := filepath.Join(s.dir, tmpPrefix+name+tmpSuffix)
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, perr.WrapStorage(err, "create artifact")
	}
	return &artifact{
		name:  name,
		tmp:   tmp,
		final: s.Path(name),
		f:     f,
		w:     bufio.NewWriterSize(f, bufSize),
	}, nil
}

type artifact struct {
	name, tmp, final string

	f    *os.File
	w    *bufio.Writer
	done bool
}

func (a *artifact) Name() string { return a.name }

func (a *artifact) Path() string { return a.final }

func (a *artifact) AppendLine(line string) error {
	if a.done {
		return perr.Storagef("artifact %q is closed", a.name)
	}
	if _, err := a.w.WriteString(line); err != nil {
		return perr.WrapStorage(err, "write artifact")
	}
	if err := a.w.WriteByte('\n'); err != nil {
		return perr.WrapStorage(err, "write artifact")
	}
	return nil
}

func (a *artifact) Finalize() (int64, error) {
	if a.done {
		return 0, perr.Storagef("artifact %q is closed", a.name)
	}
	a.done = true
	if err := a.w.Flush(); err != nil {
		a.cleanup()
		return 0, perr.WrapStorage(err, "flush artifact")
	}
	if err := a.f.Sync(); err != nil {
		a.cleanup()
		return 0, perr.WrapStorage(err, "sync artifact")
	}
	fi, err := a.f.Stat()
	if err != nil {
		a.cleanup()
		return 0, perr.WrapStorage(err, "stat artifact")
	}
	if err := a.f.Close(); err != nil {
		_ = os.Remove(a.tmp)
		return 0, perr.WrapStorage(err, "close artifact")
	}
	if err := os.Rename(a.tmp, a.final); err != nil {
		_ = os.Remove(a.tmp)
		return 0, perr.WrapStorage(err, "publish artifact")
	}
	return fi.Size(), nil
}

func (a *artifact) Discard() error {
	if a.done {
		return nil
	}
	a.done = true
	a.cleanup()
	return nil
}

func (a *artifact) Remove() error {
	if !a.done {
		return a.Discard()
	}
	if err := os.Remove(a.final); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return perr.WrapStorage(err, "remove artifact")
	}
	return nil
}

func (a *artifact) cleanup() {
	_ = a.f.Close()
	_ = os.Remove(a.tmp)
}

// Open returns a reader over a finalized artifact, a missing file is not found
func (s *FS) Open(name string) (io.ReadCloser, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, perr.NotFoundf("artifact %q is missing on disk", name)
	}
	if err != nil {
		return nil, perr.WrapStorage(err, "open artifact")
	}
	return f, nil
}

// Exists reports whether a finalized artifact is on disk
func (s *FS) Exists(name string) bool {
	if validName(name) != nil {
		return false
	}
	fi, err := os.Stat(s.Path(name))
	return err == nil && fi.Mode().IsRegular()
}

// Remove deletes a finalized artifact, a missing file is fine
func (s *FS) Remove(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return perr.WrapStorage(err, "remove artifact")
	}
	return nil
}

// Usage sums regular, non hidden files in the directory
func (s *FS) Usage() (total int64, count int, err error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, 0, perr.WrapStorage(err, "read files directory")
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		fi, err := e.Info()
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		total += fi.Size()
		count++
	}
	return total, count, nil
}

// RemoveAll deletes every finalized artifact and returns how many went
func (s *FS) RemoveAll() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, perr.WrapStorage(err, "read files directory")
	}
	n := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return n, perr.WrapStorage(err, "remove artifact")
		}
		n++
	}
	return n, nil
}
