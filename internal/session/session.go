// Package session models the signed-in staff member for the lifetime of a
// request. A Session is built only from a validated token; its fields are
// read-only to the rest of the program.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Session struct {
	userID    uuid.UUID
	email     string
	name      string
	role      string
	tokenID   string
	expiresAt time.Time
}

func (s *Session) UserID() uuid.UUID    { return s.userID }
func (s *Session) Email() string        { return s.email }
func (s *Session) Name() string         { return s.name }
func (s *Session) Role() string         { return s.role }
func (s *Session) TokenID() string      { return s.tokenID }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// HasRole reports whether the session role is one of roles.
func (s *Session) HasRole(roles ...string) bool {
	for _, r := range roles {
		if s.role == r {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
