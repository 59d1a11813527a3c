package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"preloadassist/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

type traceLine struct {
	Level     string `json:"level"`
	Slow      bool   `json:"slow"`
	SQL       string `json:"sql"`
	Rows      int64  `json:"rows"`
	Error     string `json:"error"`
	Component string `json:"component"`
	RunID     string `json:"run_id"`
	Message   string `json:"message"`
}

func trace(ctx context.Context, t *testing.T, tr *Tracer, sql string, end pgx.TraceQueryEndData, buf *bytes.Buffer) traceLine {
	t.Helper()
	ctx = tr.TraceQueryStart(ctx, nil, pgx.TraceQueryStartData{SQL: sql, Args: []any{int64(1)}})
	tr.TraceQueryEnd(ctx, nil, end)
	var l traceLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &l); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	buf.Reset()
	return l
}

func TestTracer(t *testing.T) {
	var buf bytes.Buffer
	root := zerolog.New(&buf).Level(zerolog.ErrorLevel)

	fast := NewTracer(root, time.Hour)
	ctx := logger.WithRun(context.Background(), "run-7")
	got := trace(ctx, t, fast, "update preload_files\n\tset is_selected = false", pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("UPDATE 3")}, &buf)
	if got.Level != "info" || got.Slow || got.Rows != 3 || got.RunID != "run-7" || got.Component != "pg" || got.Message != "pg query" {
		t.Fatalf("fast line %+v", got)
	}
	if got.SQL != "update preload_files set is_selected = false" {
		t.Fatalf("sql not compacted: %q", got.SQL)
	}

	slow := NewTracer(root, time.Nanosecond)
	got = trace(context.Background(), t, slow, "select pg_try_advisory_xact_lock($1)", pgx.TraceQueryEndData{Err: errors.New("boom")}, &buf)
	if got.Level != "warn" || !got.Slow || got.Error != "boom" || got.RunID != "" {
		t.Fatalf("slow line %+v", got)
	}

	slow.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	if buf.Len() != 0 {
		t.Fatalf("end without start should not log: %q", buf.String())
	}
}
