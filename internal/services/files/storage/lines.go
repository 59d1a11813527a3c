package storage

import (
	"bufio"
	"io"
	"strings"

	perr "preloadassist/internal/platform/errors"
)

// maxLine bounds a single URL line
const maxLine = 1 << 20

func scanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	return sc
}

// Window returns up to limit trimmed lines after skipping offset lines
func (s *FS) Window(name string, limit, offset int) ([]string, error) {
	rc, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	out := make([]string, 0, max(0, min(limit, 1024)))
	sc := scanner(rc)
	for i := 0; sc.Scan(); i++ {
		if i < offset {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, perr.WrapStorage(err, "read artifact")
	}
	return out, nil
}

// Each calls fn with every non-empty trimmed line
func (s *FS) Each(name string, fn func(line string) error) error {
	rc, err := s.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	sc := scanner(rc)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return perr.WrapStorage(err, "read artifact")
	}
	return nil
}
