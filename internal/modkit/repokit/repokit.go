// Package repokit is the surface SQL repos and the services driving them share
// It aliases the store seams so repos never import a driver
package repokit

import "preloadassist/internal/platform/store"

type (
	Queryer    = store.RowQuerier
	TxRunner   = store.TxRunner
	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// Binder binds a repo to a Queryer, either the pool or an open transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a function to Binder, mostly for fakes
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }
