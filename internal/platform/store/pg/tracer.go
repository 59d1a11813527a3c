package pg

import (
	"context"
	"strings"
	"time"

	"preloadassist/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Tracer is a pgx.QueryTracer that logs each statement once it finishes
// request_id and run_id are taken from the query context
type Tracer struct {
	log  logger.Logger
	slow time.Duration
}

var _ pgx.QueryTracer = (*Tracer)(nil)

// NewTracer logs at debug even when root is set higher, so LOG_SQL alone turns tracing on
func NewTracer(root logger.Logger, slow time.Duration) *Tracer {
	return &Tracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger(), slow: slow}
}

type startKey struct{}

type started struct {
	sql  string
	args []any
	at   time.Time
}

func (t *Tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, startKey{}, started{sql: d.SQL, args: d.Args, at: time.Now()})
}

func (t *Tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryEndData) {
	st, ok := ctx.Value(startKey{}).(started)
	if !ok {
		return
	}
	elapsed := time.Since(st.at)
	slow := t.slow > 0 && elapsed >= t.slow

	l := logger.Annotate(ctx, t.log.With()).Logger()
	evt := l.Info()
	if slow {
		evt = l.Warn()
	}
	evt.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000).
		Bool("slow", slow).
		Str("sql", strings.Join(strings.Fields(st.sql), " ")).
		Interface("args", st.args).
		Int64("rows", d.CommandTag.RowsAffected()).
		Err(d.Err).
		Msg("pg query")
}
