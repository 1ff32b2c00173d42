// Package session carries the caller's platform credentials explicitly
// through request contexts.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey struct{}

// Session is the authenticated caller of one request.
type Session struct {
	token     string
	expiresAt time.Time
	subject   string
}

// New builds a session from a bearer token. When the token is a JWT its exp
// and sub claims are read without verifying the signature; the platform API
// does the verification.
func New(token string) *Session {
	s := &Session{token: strings.TrimSpace(token)}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(s.token, &claims); err == nil {
		if claims.ExpiresAt != nil {
			s.expiresAt = claims.ExpiresAt.Time
		}
		s.subject = claims.Subject
	}

	return s
}

// FromAuthorization extracts the token of a "Bearer <token>" header value.
func FromAuthorization(header string) (*Session, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return nil, false
	}
	return New(header[len(prefix):]), true
}

func (s *Session) Token() string { return s.token }

// Subject is the JWT sub claim, empty for opaque tokens.
func (s *Session) Subject() string { return s.subject }

// Expired reports whether the token's exp claim is at or before now.
// Opaque tokens never expire locally.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.token == "" {
		return true
	}
	return !s.expiresAt.IsZero() && !now.Before(s.expiresAt)
}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
