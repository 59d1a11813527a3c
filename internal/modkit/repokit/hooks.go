package repokit

import "context"

// BeginHook runs first inside every transaction of a hooked runner
// An error aborts the transaction before the caller's function runs
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks wraps inner so each Tx runs hooks before fn
// Statements outside Tx go straight to inner
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	return hookedTx{TxRunner: inner, hooks: hooks}
}

type hookedTx struct {
	TxRunner
	hooks []BeginHook
}

func (h hookedTx) Tx(ctx context.Context, fn func(q Queryer) error) error {
	return h.TxRunner.Tx(ctx, func(q Queryer) error {
		for _, hk := range h.hooks {
			if err := hk(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// TryAdvisoryLock takes a transaction scoped advisory lock on key, failing with busy when another session holds it
func TryAdvisoryLock(key int64, busy error) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		var ok bool
		if err := q.QueryRow(ctx, `select pg_try_advisory_xact_lock($1)`, key).Scan(&ok); err != nil {
			return err
		}
		if !ok {
			return busy
		}
		return nil
	}
}
