package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/transport"
	"github.com/frahmantamala/shifts-logger/internal/user"
)

// RBACAuthorization gates routes on the principal placed in the request
// context by the auth middleware.
type RBACAuthorization struct {
	*transport.BaseHandler
	checker PermissionChecker
}

func NewRBACAuthorization(checker PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		checker:     checker,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, permission string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := internal.PrincipalFromContext(r.Context())
		if !ok {
			ra.Logger.Warn("authorization check failed: principal not found in context")
			ra.WriteAppError(w, internal.ErrInvalidAuthorization)
			return
		}

		hasAccess, err := ra.checker.HasPermission(r.Context(), principal.Permissions, permission)
		if err != nil {
			ra.Logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", principal.UserID, "permission", permission)
			ra.WriteError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !hasAccess {
			ra.Logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", principal.UserID,
				"required_permission", permission,
				"role", principal.Role)
			ra.WriteAppError(w, internal.ErrInsufficientRole)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permission)
	}
}

// RequireRoles admits principals whose role is one of roles.
func (ra *RBACAuthorization) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				ra.WriteAppError(w, internal.ErrInvalidAuthorization)
				return
			}

			if !ra.checker.HasAnyRole(principal.Role, roles) {
				ra.Logger.WarnContext(r.Context(), "access denied: role not allowed",
					"user_id", principal.UserID,
					"role", principal.Role,
					"allowed_roles", roles)
				ra.WriteAppError(w, internal.ErrInsufficientRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(user.RoleAdmin)
}
