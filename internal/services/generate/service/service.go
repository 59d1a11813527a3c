// Package service runs URL generation: resolve the catalog, enumerate, assemble and write one artifact
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"preloadassist/internal/core/permute"
	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
	catdom "preloadassist/internal/services/catalog/domain"
	fdom "preloadassist/internal/services/files/domain"
	"preloadassist/internal/services/generate/domain"
)

// Service defines the service contract for generation
type Service interface{ domain.ServicePort }

// checkEvery is how many lines are written between context checks
const checkEvery = 1024

// Options configures generation
type Options struct {
	SiteURL string        // storefront base, used when no category is selected or a category has no url
	MaxURLs int           // cap used when a request leaves max_urls unset
	Timeout time.Duration // per run, zero means none
}

// Svc implements the Service interface
type Svc struct {
	src  catdom.Sources
	sink fdom.Sink
	reg  fdom.RegistryPort
	lock domain.Locker
	runs domain.RunLog
	opt  Options

	mu    sync.Mutex
	now   func() time.Time
	newID func() uuid.UUID
}

var _ Service = (*Svc)(nil)

// New creates a new generation service
func New(src catdom.Sources, sink fdom.Sink, reg fdom.RegistryPort, lock domain.Locker, runs domain.RunLog, opt Options) *Svc {
	switch {
	case src == nil:
		panic("generate.Service requires catalog sources")
	case sink == nil:
		panic("generate.Service requires an artifact sink")
	case reg == nil:
		panic("generate.Service requires a file registry")
	case lock == nil:
		panic("generate.Service requires a run lock")
	case runs == nil:
		panic("generate.Service requires a run log")
	}
	if opt.MaxURLs <= 0 {
		opt.MaxURLs = 10000
	}
	return &Svc{src: src, sink: sink, reg: reg, lock: lock, runs: runs, opt: opt, now: time.Now, newID: uuid.New}
}

// Generate performs one run; a concurrent call fails with ErrRunInProgress
func (s *Svc) Generate(ctx context.Context, req domain.Request) (domain.Result, error) {
	if !s.mu.TryLock() {
		return domain.Result{}, domain.ErrRunInProgress
	}
	defer s.mu.Unlock()

	if s.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opt.Timeout)
		defer cancel()
	}

	var res domain.Result
	err := s.lock.Hold(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.run(ctx, req)
		return err
	})
	if err != nil {
		return domain.Result{}, perr.FromContext(err)
	}
	return res, nil
}

func (s *Svc) run(ctx context.Context, req domain.Request) (res domain.Result, err error) {
	start := s.now()
	id := s.newID()
	ctx = logger.WithRun(ctx, id.String())
	log := logger.C(ctx)

	p, err := s.plan(ctx, req)
	if err != nil {
		return res, err
	}

	limit := req.MaxURLs
	if limit <= 0 {
		limit = s.opt.MaxURLs
	}
	space := permute.New(p.slots, req.IncludeEmpty)
	cur := space.Cursor(limit)
	plan := cur.Plan()

	res = domain.Result{
		RunID:        id.String(),
		FileName:     fileName(start, id),
		Combinations: plan.Total.String(),
		Truncated:    plan.Truncated,
	}
	log.Info().
		Int("slots", len(p.slots)).
		Str("combinations", res.Combinations).
		Int("max_urls", limit).
		Bool("truncated", res.Truncated).
		Msg("generation started")

	defer func() {
		res.DurationMS = s.now().Sub(start).Milliseconds()
		s.history(ctx, start, res, err)
	}()

	art, err := s.sink.Create(ctx, res.FileName)
	if err != nil {
		return res, storageErr(err, "create artifact")
	}
	n, err := s.write(ctx, art, p, space, cur)
	if err != nil {
		if derr := art.Discard(); derr != nil {
			log.Warn().Err(derr).Msg("discard artifact")
		}
		return res, err
	}
	size, err := art.Finalize()
	if err != nil {
		_ = art.Discard()
		return res, storageErr(err, "finalize artifact")
	}
	res.URLCount, res.SizeBytes = n, size

	f, err := s.reg.Record(ctx, fdom.NewFile{
		FileName:    res.FileName,
		StoragePath: art.Path(),
		SizeBytes:   size,
		URLCount:    n,
		RunID:       res.RunID,
		Select:      req.Select,
	})
	if err != nil {
		// only recorded runs keep their file
		if rerr := art.Remove(); rerr != nil {
			log.Warn().Err(rerr).Str("file", res.FileName).Msg("remove unrecorded artifact")
		}
		log.Error().Err(err).Str("file", res.FileName).Msg("artifact written but not recorded")
		return res, err
	}
	res.FileID, res.Selected = f.ID, f.IsSelected

	log.Info().
		Int64("file_id", f.ID).
		Str("file", res.FileName).
		Int64("urls", n).
		Int64("bytes", size).
		Dur("elapsed", s.now().Sub(start)).
		Msg("generation finished")
	return res, nil
}

func (s *Svc) write(ctx context.Context, art fdom.Artifact, p *runPlan, space *permute.Space, cur *permute.Cursor) (int64, error) {
	slots := space.Slots()
	var n int64
	for {
		t, ok := cur.Next()
		if !ok {
			return n, nil
		}
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return n, perr.FromContext(err)
			}
		}
		if err := art.AppendLine(p.url(slots[t.Slot], t)); err != nil {
			return n, storageErr(err, "append line")
		}
		n++
	}
}

// history records a started run; failures only log
func (s *Svc) history(ctx context.Context, start time.Time, res domain.Result, runErr error) {
	r := domain.Run{
		RunID:        res.RunID,
		StartedAt:    start,
		FinishedAt:   s.now(),
		Status:       domain.StatusSuccess,
		URLCount:     uint64(res.URLCount),
		SizeBytes:    uint64(res.SizeBytes),
		Combinations: res.Combinations,
		Truncated:    res.Truncated,
		FileName:     res.FileName,
	}
	if runErr != nil {
		r.Status = domain.StatusFailed
		r.Error = runErr.Error()
		r.FileName = ""
	}
	if err := s.runs.Append(context.WithoutCancel(ctx), r); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("run history append failed")
	}
}

// Runs returns recent run history, newest first
func (s *Svc) Runs(ctx context.Context, limit int) ([]domain.Run, error) {
	switch {
	case limit <= 0:
		limit = 20
	case limit > 500:
		limit = 500
	}
	runs, err := s.runs.Recent(ctx, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "run history")
	}
	return runs, nil
}

func fileName(at time.Time, id uuid.UUID) string {
	return "preload-urls-" + at.UTC().Format("20060102-150405") + "-" + id.String()[:8] + ".txt"
}

// storageErr keeps coded errors and tags the rest as storage failures
func storageErr(err error, msg string) error {
	if _, ok := perr.As(err); ok {
		return err
	}
	return perr.WrapStorage(err, msg)
}
