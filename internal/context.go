package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey      ctxKey = "userID"
	ContextPrincipalKey ctxKey = "principal"
)

// Principal is the authenticated caller attached by the auth middleware.
type Principal struct {
	UserID      string
	Email       string
	Role        string
	JTI         string
	// Permissions are the role-derived claims carried by the access token.
	Permissions []string
}

func (p *Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

func (p *Principal) HasPermission(permission string) bool {
	for _, perm := range p.Permissions {
		if perm == permission {
			return true
		}
	}
	return false
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if userID, ok := ctx.Value(ContextUserKey).(string); ok {
		return userID
	}
	return ""
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// ContextWithPrincipal stores p and its user id.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx = context.WithValue(ctx, ContextPrincipalKey, p)
	return ContextWithUserID(ctx, p.UserID)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(ContextPrincipalKey).(*Principal)
	return p, ok && p != nil
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
