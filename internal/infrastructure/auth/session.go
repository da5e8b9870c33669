package auth

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Session is the authenticated identity attached to a request
type Session struct {
	TokenID   string    `json:"-"`
	TenantID  uuid.UUID `json:"tenant_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Roles     []string  `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HasRole reports whether the session carries role
func (s *Session) HasRole(role string) bool {
	return slices.Contains(s.Roles, role)
}

// RemainingTTL returns the time left before the session expires
func (s *Session) RemainingTTL(now time.Time) time.Duration {
	if s.ExpiresAt.IsZero() {
		return 0
	}
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying session
func WithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session installed by the auth middleware
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(*Session)
	return session, ok && session != nil
}
