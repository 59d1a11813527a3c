// Package runlog stores generation run history
// ClickHouse is used when configured, otherwise a bounded in-memory ring
package runlog

import (
	"context"
	"sync"

	"preloadassist/internal/platform/store"
	"preloadassist/internal/services/generate/domain"
)

// Table is the ClickHouse history table
const Table = "preload_generation_runs"

const ddl = `
CREATE TABLE IF NOT EXISTS ` + Table + ` (
	run_id       String,
	started_at   DateTime64(3, 'UTC'),
	finished_at  DateTime64(3, 'UTC'),
	status       LowCardinality(String),
	url_count    UInt64,
	size_bytes   UInt64,
	combinations String,
	truncated    Bool,
	file_name    String,
	error        String
) ENGINE = MergeTree
ORDER BY (started_at, run_id)`

// CH writes run history to ClickHouse
type CH struct {
	ch store.Clickhouse
}

var _ domain.RunLog = (*CH)(nil)

// NewCH returns a ClickHouse run log; call Ensure once before use
func NewCH(ch store.Clickhouse) *CH {
	if ch == nil {
		panic("runlog.CH requires a clickhouse handle")
	}
	return &CH{ch: ch}
}

// Ensure creates the history table when missing
func (l *CH) Ensure(ctx context.Context) error {
	return l.ch.Exec(ctx, ddl)
}

// Append inserts one run
func (l *CH) Append(ctx context.Context, r domain.Run) error {
	return l.ch.Insert(ctx, Table, []any{
		r.RunID,
		r.StartedAt.UTC(),
		r.FinishedAt.UTC(),
		r.Status,
		r.URLCount,
		r.SizeBytes,
		r.Combinations,
		r.Truncated,
		r.FileName,
		r.Error,
	})
}

// Recent returns up to limit runs, newest first
func (l *CH) Recent(ctx context.Context, limit int) ([]domain.Run, error) {
	rows, err := l.ch.Query(ctx, `
		SELECT run_id, started_at, finished_at, status, url_count, size_bytes,
		       combinations, truncated, file_name, error
		FROM `+Table+`
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?`, uint64(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Run, 0, limit)
	for rows.Next() {
		var r domain.Run
		if err := rows.Scan(
			&r.RunID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.URLCount, &r.SizeBytes,
			&r.Combinations, &r.Truncated, &r.FileName, &r.Error,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Memory keeps the last Cap runs in process
type Memory struct {
	Cap int

	mu   sync.Mutex
	runs []domain.Run
}

var _ domain.RunLog = (*Memory)(nil)

// NewMemory returns a ring holding up to n runs
func NewMemory(n int) *Memory {
	if n <= 0 {
		n = 100
	}
	return &Memory{Cap: n}
}

// Append records r, evicting the oldest run when full
func (m *Memory) Append(_ context.Context, r domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, r)
	if over := len(m.runs) - m.Cap; over > 0 {
		m.runs = append(m.runs[:0:0], m.runs[over:]...)
	}
	return nil
}

// Recent returns up to limit runs, newest first
func (m *Memory) Recent(_ context.Context, limit int) ([]domain.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.runs) {
		limit = len(m.runs)
	}
	out := make([]domain.Run, 0, limit)
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}
