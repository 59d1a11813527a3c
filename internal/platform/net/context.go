// Package net holds request scoped values and the JSON envelope shared by HTTP layers
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

var subjectKey ctxKey

// WithRequestID stores id where chi's RequestID middleware would put it
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, id)
}

// RequestID returns the request id, "" when absent
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// WithSubject records the authenticated admin user
func WithSubject(ctx context.Context, sub string) context.Context {
	if sub == "" {
		return ctx
	}
	return context.WithValue(ctx, subjectKey, sub)
}

// Subject returns the authenticated admin user, "" on unauthenticated routes
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}
