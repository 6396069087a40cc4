package session

import (
	"context"
	"errors"
	"time"

	sessionDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/session"
)

var ErrNotFound = errors.New("session not found")

// Session is a refresh session bound to the jti of the access token
// issued alongside it.
type Session struct {
	Seq         int64      `json:"-"`
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	JTI         string     `json:"jti"`
	TokenSecret string     `json:"-"`
	IssuedAt    time.Time  `json:"issued_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	Revoked     bool       `json:"revoked"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

func (s *Session) IsActive() bool {
	return !s.Revoked
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// MarkRevoked flips the session to revoked. It reports false, leaving
// RevokedAt untouched, when the session was already revoked.
func (s *Session) MarkRevoked(now time.Time) bool {
	if s.Revoked {
		return false
	}
	s.Revoked = true
	at := now
	s.RevokedAt = &at
	return true
}

// Store persists refresh sessions. Find methods return ErrNotFound when
// nothing matches; "latest" means highest creation sequence.
type Store interface {
	Create(ctx context.Context, s *Session) error
	FindLatestByUser(ctx context.Context, userID string) (*Session, error)
	FindActiveByUser(ctx context.Context, userID string) (*Session, error)
	Revoke(ctx context.Context, s *Session) error
}

func ToDataModel(s *Session) *sessionDatamodel.Session {
	return &sessionDatamodel.Session{
		Seq:         s.Seq,
		ID:          s.ID,
		UserID:      s.UserID,
		JTI:         s.JTI,
		TokenSecret: s.TokenSecret,
		IssuedAt:    s.IssuedAt,
		ExpiresAt:   s.ExpiresAt,
		Revoked:     s.Revoked,
		RevokedAt:   s.RevokedAt,
	}
}

func FromDataModel(s *sessionDatamodel.Session) *Session {
	return &Session{
		Seq:         s.Seq,
		ID:          s.ID,
		UserID:      s.UserID,
		JTI:         s.JTI,
		TokenSecret: s.TokenSecret,
		IssuedAt:    s.IssuedAt,
		ExpiresAt:   s.ExpiresAt,
		Revoked:     s.Revoked,
		RevokedAt:   s.RevokedAt,
	}
}
