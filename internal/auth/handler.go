package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/transport"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/frahmantamala/shifts-logger/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto user.RegisterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteAppError(w, err)
		return
	}

	if err := h.Service.Register(r.Context(), dto); err != nil {
		h.Logger.Warn("Register: service error", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "Registration successful")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteAppError(w, err)
		return
	}

	tokens, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("Login: service error", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrInvalidAuthorization)
		return
	}

	if err := h.Service.Logout(r.Context(), principal.UserID); err != nil {
		h.Logger.Warn("Logout: service error", "error", err, "user_id", principal.UserID)
		h.WriteAppError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "Logout successful")
}

// AuthMiddleware admits requests whose bearer token is valid and whose
// subject's latest session is still live. An unknown or missing subject
// is a 404, a revoked or absent session a 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, decision, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "error", err)
			h.WriteAppError(w, err)
			return
		}

		switch decision {
		case DecisionNotFound:
			h.WriteAppError(w, internal.ErrUserNotFound)
			return
		case DecisionUnauthorized:
			h.WriteAppError(w, internal.ErrInvalidAuthorization)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r, claims)))
	})
}

// TokenMiddleware admits any request carrying a valid bearer token with a
// subject. Sessions are not consulted; logout checks them itself.
func (h *Handler) TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims, err := h.Service.VerifyAccessToken(token)
		if err != nil {
			h.Logger.Warn("token middleware: token rejected", "error", err)
			h.WriteAppError(w, err)
			return
		}
		if claims.Subject == "" {
			h.WriteAppError(w, internal.ErrUserNotFound)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r, claims)))
	})
}

func withPrincipal(r *http.Request, claims *Claims) context.Context {
	principal := &internal.Principal{
		UserID:      claims.Subject,
		Email:       claims.Email,
		Role:        claims.Role,
		JTI:         claims.ID,
		Permissions: claims.Permissions,
	}
	ctx := internal.ContextWithPrincipal(r.Context(), principal)
	return logger.WithPrincipal(ctx, principal.UserID, principal.Role)
}
