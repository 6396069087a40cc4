package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/transport"
)

type ServiceAPI interface {
	FindByID(ctx context.Context, id string) (*User, error)
}

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

// GetCurrentUser returns the caller's profile.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.Logger.Error("GetCurrentUser: principal not found in context")
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.FindByID(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.Logger.Error("GetCurrentUser: lookup failed", "error", err, "user_id", principal.UserID)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToProfile())
}
