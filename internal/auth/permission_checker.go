package auth

import (
	"context"

	"github.com/frahmantamala/shifts-logger/internal/user"
)

const (
	PermissionReadOwnShifts  = "shifts:read"
	PermissionWriteOwnShifts = "shifts:write"
	PermissionReadAllShifts  = "shifts:read:all"
	PermissionCountAllShifts = "shifts:count:all"
	PermissionReadProfile    = "users:read:self"
)

var roleClaims = map[string][]string{
	user.RoleEmployee: {
		PermissionReadOwnShifts,
		PermissionWriteOwnShifts,
		PermissionReadProfile,
	},
	user.RoleAdmin: {
		PermissionReadOwnShifts,
		PermissionWriteOwnShifts,
		PermissionReadProfile,
		PermissionReadAllShifts,
		PermissionCountAllShifts,
	},
}

// RoleClaimSource yields the extra claims a role contributes to a token.
type RoleClaimSource interface {
	ClaimsForRole(ctx context.Context, role string) ([]string, error)
}

type PermissionChecker interface {
	RoleClaimSource
	HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error)
	HasAnyRole(role string, allowed []string) bool
	IsAdmin(role string) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

// ClaimsForRole returns a copy of the static claim set; unknown roles get none.
func (c *DefaultPermissionChecker) ClaimsForRole(_ context.Context, role string) ([]string, error) {
	claims := roleClaims[role]
	out := make([]string, len(claims))
	copy(out, claims)
	return out, nil
}

func (c *DefaultPermissionChecker) HasPermission(_ context.Context, userPermissions []string, permission string) (bool, error) {
	for _, p := range userPermissions {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

func (c *DefaultPermissionChecker) HasAnyRole(role string, allowed []string) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

func (c *DefaultPermissionChecker) IsAdmin(role string) bool {
	return role == user.RoleAdmin
}
