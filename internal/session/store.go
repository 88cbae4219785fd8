package session

import (
	"context"
	"time"
)

// Session is a time-bounded proof of a successful login. It stores only
// identity pointers, not auth state.
type Session struct {
	Token     string    `json:"token"`      // unique opaque session token
	UserID    string    `json:"user_id"`    // references users.id
	ExpiresAt time.Time `json:"expires_at"` // absolute expiry time
}

// Expired reports whether the session is past its expiry. The store
// never enforces this; callers do.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store defines how sessions are stored and retrieved.
// Implementations must remain stateless and opaque.
type Store interface {
	// FindByToken returns (nil, nil) when no session exists for the token.
	FindByToken(ctx context.Context, token string) (*Session, error)
	// Upsert creates the session or refreshes an existing one with the
	// same token.
	Upsert(ctx context.Context, s Session) error
	Delete(ctx context.Context, token string) error
}
