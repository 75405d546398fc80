package domain

import (
	"context"
	"time"
)

// Session binds a user to the hash of their currently valid token.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Live reports whether the session has not yet passed its expiry at now.
func (s *Session) Live(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}

type CreateSessionInput struct {
	UserID    string
	TokenHash string
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
}

type RotateSessionInput struct {
	SessionID    string
	UserID       string
	OldTokenHash string
	NewTokenHash string
	ExpiresAt    time.Time
}

// SessionRepository owns session records. Implementations guarantee that
// Replace leaves exactly one session for the user, and that lookups treat
// sessions past ExpiresAt as absent even before DeleteExpired has run.
type SessionRepository interface {
	Replace(ctx context.Context, input CreateSessionInput) (*Session, error)
	FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error)
	FindByUserID(ctx context.Context, userID string) ([]Session, error)
	Rotate(ctx context.Context, input RotateSessionInput) (*Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
