// Package service issues and verifies HS256 admin tokens
package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	perr "preloadassist/internal/platform/errors"
	"preloadassist/internal/platform/logger"
	"preloadassist/internal/services/auth/domain"
)

// Service defines the service contract for auth
type Service interface{ domain.ServicePort }

const issuer = "preload-assist"

// Options configures token issuing
// An empty Secret disables auth entirely
type Options struct {
	Secret       string
	Username     string
	PasswordHash string // bcrypt hash of the admin password
	TTL          time.Duration
}

// Svc implements the Service interface
type Svc struct {
	opt Options
	now func() time.Time
}

var _ Service = (*Svc)(nil)

// New creates a new auth service
func New(opt Options) *Svc {
	if opt.Username == "" {
		opt.Username = "admin"
	}
	if opt.TTL <= 0 {
		opt.TTL = 24 * time.Hour
	}
	return &Svc{opt: opt, now: time.Now}
}

// Enabled reports whether routes should require a bearer token
func (s *Svc) Enabled() bool { return s.opt.Secret != "" }

// Login checks the admin credentials and issues a token
func (s *Svc) Login(ctx context.Context, in domain.LoginInput) (domain.Token, error) {
	if !s.Enabled() || s.opt.PasswordHash == "" {
		return domain.Token{}, perr.Unavailablef("token login is not configured")
	}
	userOK := subtle.ConstantTimeCompare([]byte(in.Username), []byte(s.opt.Username)) == 1
	pwErr := bcrypt.CompareHashAndPassword([]byte(s.opt.PasswordHash), []byte(in.Password))
	if !userOK || pwErr != nil {
		logger.C(ctx).Warn().Str("username", in.Username).Msg("admin login rejected")
		return domain.Token{}, perr.Unauthorizedf("invalid credentials")
	}

	now := s.now()
	exp := now.Add(s.opt.TTL)
	claims := &jwt.StandardClaims{
		Subject:   s.opt.Username,
		Issuer:    issuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opt.Secret))
	if err != nil {
		return domain.Token{}, perr.Wrap(err, perr.ErrorCodeUnknown, "sign token")
	}
	return domain.Token{Token: signed, ExpiresAt: time.Unix(exp.Unix(), 0).UTC()}, nil
}

// Parse validates an HS256 token issued by Login and returns its subject
func (s *Svc) Parse(token string) (string, error) {
	if !s.Enabled() {
		return "", perr.Unauthorizedf("auth disabled")
	}
	claims := &jwt.StandardClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.opt.Secret), nil
	})
	if err != nil || !t.Valid {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	if claims.Issuer != issuer || claims.Subject == "" {
		return "", perr.Unauthorizedf("invalid bearer token")
	}
	return claims.Subject, nil
}
