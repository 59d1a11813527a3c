// Package domain holds admin authentication types
package domain

import (
	"context"
	"time"
)

// LoginInput carries admin credentials
type LoginInput struct {
	Username string `json:"username" validate:"required,max=100" example:"admin"`
	Password string `json:"password" validate:"required,max=200" example:"secret"`
}

// Token is an issued bearer token
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ServicePort is the auth surface
type ServicePort interface {
	Enabled() bool
	Login(ctx context.Context, in LoginInput) (Token, error)
	// Parse validates a bearer token and returns its subject
	Parse(token string) (string, error)
}
