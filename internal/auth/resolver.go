package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/shifts-logger/internal/session"
	"github.com/frahmantamala/shifts-logger/internal/user"
)

type Decision int

const (
	DecisionNotFound Decision = iota
	DecisionUnauthorized
	DecisionAuthorized
)

func (d Decision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionUnauthorized:
		return "unauthorized"
	default:
		return "not_found"
	}
}

type userLookup interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// Resolver decides whether a user id from a token still has a live login.
// Only the most recently created session counts; its expiry is not checked.
type Resolver struct {
	users    userLookup
	sessions session.Store
}

func NewResolver(users userLookup, sessions session.Store) *Resolver {
	return &Resolver{users: users, sessions: sessions}
}

func (r *Resolver) Resolve(ctx context.Context, userID string) (Decision, error) {
	if userID == "" {
		return DecisionNotFound, nil
	}

	if _, err := r.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return DecisionNotFound, nil
		}
		return DecisionNotFound, fmt.Errorf("resolve user %s: %w", userID, err)
	}

	latest, err := r.sessions.FindLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return DecisionUnauthorized, nil
		}
		return DecisionNotFound, fmt.Errorf("resolve session for %s: %w", userID, err)
	}

	if latest.Revoked {
		return DecisionUnauthorized, nil
	}
	return DecisionAuthorized, nil
}
