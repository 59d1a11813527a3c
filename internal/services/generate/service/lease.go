package service

import (
	"context"

	"preloadassist/internal/modkit/repokit"
	"preloadassist/internal/services/generate/domain"
)

// DefaultLockKey is the advisory lock id used when none is configured
const DefaultLockKey int64 = 0x70726c64 // "prld"

// PGLease serializes runs across processes with a transaction scoped advisory lock
// The lock is released when the wrapping transaction ends, including on a crash
type PGLease struct {
	db  repokit.TxRunner
	key int64
}

var _ domain.Locker = (*PGLease)(nil)

// NewPGLease returns a lease on key; zero uses DefaultLockKey
func NewPGLease(db repokit.TxRunner, key int64) *PGLease {
	if db == nil {
		panic("generate.PGLease requires a non nil TxRunner")
	}
	if key == 0 {
		key = DefaultLockKey
	}
	return &PGLease{db: repokit.WithBeginHooks(db, repokit.TryAdvisoryLock(key, domain.ErrRunInProgress)), key: key}
}

// Hold runs do while the lock is held, or returns ErrRunInProgress without running it
func (l *PGLease) Hold(ctx context.Context, do func(context.Context) error) error {
	return l.db.Tx(ctx, func(repokit.Queryer) error { return do(ctx) })
}
