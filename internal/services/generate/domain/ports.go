package domain

import "context"

// RunLog keeps a history of generation runs
type RunLog interface {
	Append(ctx context.Context, r Run) error
	Recent(ctx context.Context, limit int) ([]Run, error)
}

// Locker serializes runs across processes
// Hold runs do while holding the lock, or returns ErrRunInProgress
type Locker interface {
	Hold(ctx context.Context, do func(context.Context) error) error
}

// ServicePort is the generation surface
type ServicePort interface {
	Generate(ctx context.Context, req Request) (Result, error)
	Runs(ctx context.Context, limit int) ([]Run, error)
}
