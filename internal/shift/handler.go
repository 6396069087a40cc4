package shift

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/pagination"
	"github.com/frahmantamala/shifts-logger/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	AddShift(ctx context.Context, userID string, dto CreateShiftDTO) (*Shift, error)
	GetShift(ctx context.Context, userID string, id int64) (*Shift, error)
	UpdateShift(ctx context.Context, userID string, id int64, dto UpdateShiftDTO) (*Shift, error)
	DeleteShift(ctx context.Context, userID string, id int64) error
	ListShifts(ctx context.Context, userID string, page pagination.PageRequest) (pagination.Page[*Shift], error)
	ListAllShifts(ctx context.Context, page pagination.PageRequest) (pagination.Page[*Shift], error)
	CountShifts(ctx context.Context, userID string) (int64, error)
	CountAllShifts(ctx context.Context) (int64, error)
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

func (h *Handler) caller(w http.ResponseWriter, r *http.Request, op string) (*internal.Principal, bool) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.Logger.Error(op + ": principal not found in context")
		h.WriteAppError(w, internal.ErrInvalidAuthorization)
		return nil, false
	}
	return principal, true
}

func (h *Handler) shiftID(w http.ResponseWriter, r *http.Request, op string) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		h.Logger.Warn(op+": invalid shift ID", "id", raw)
		h.WriteError(w, http.StatusBadRequest, "invalid shift ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) AddShift(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.caller(w, r, "AddShift")
	if !ok {
		return
	}

	var dto CreateShiftDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteUnprocessable(w, err)
		return
	}

	sh, err := h.Service.AddShift(r.Context(), principal.UserID, dto)
	if err != nil {
		h.Logger.Error("AddShift: service error", "error", err, "user_id", principal.UserID)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, sh.ToResponse())
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.caller(w, r, "UpdateShift")
	if !ok {
		return
	}
	id, ok := h.shiftID(w, r, "UpdateShift")
	if !ok {
		return
	}

	var dto UpdateShiftDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteUnprocessable(w, err)
		return
	}

	sh, err := h.Service.UpdateShift(r.Context(), principal.UserID, id, dto)
	if err != nil {
		h.Logger.Error("UpdateShift: service error", "error", err, "shift_id", id, "user_id", principal.UserID)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sh.ToResponse())
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.caller(w, r, "DeleteShift")
	if !ok {
		return
	}
	id, ok := h.shiftID(w, r, "DeleteShift")
	if !ok {
		return
	}

	if err := h.Service.DeleteShift(r.Context(), principal.UserID, id); err != nil {
		h.Logger.Error("DeleteShift: service error", "error", err, "shift_id", id, "user_id", principal.UserID)
		h.WriteAppError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, fmt.Sprintf("Shift %d deleted successfully", id))
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.caller(w, r, "GetShift")
	if !ok {
		return
	}
	id, ok := h.shiftID(w, r, "GetShift")
	if !ok {
		return
	}

	sh, err := h.Service.GetShift(r.Context(), principal.UserID, id)
	if err != nil {
		h.Logger.Error("GetShift: service error", "error", err, "shift_id", id, "user_id", principal.UserID)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, sh.ToResponse())
}

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.caller(w, r, "ListShifts")
	if !ok {
		return
	}

	page, err := pagination.FromQuery(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	result, err := h.Service.ListShifts(r.Context(), principal.UserID, page)
	if err != nil {
		h.Logger.Error("ListShifts: service error", "error", err, "user_id", principal.UserID)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, pagination.Map(result, (*Shift).ToResponse))
}

func (h *Handler) ListAllShifts(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromQuery(r)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	result, err := h.Service.ListAllShifts(r.Context(), page)
	if err != nil {
		h.Logger.Error("ListAllShifts: service error", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, pagination.Map(result, (*Shift).ToResponse))
}

func (h *Handler) CountShifts(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.caller(w, r, "CountShifts")
	if !ok {
		return
	}

	n, err := h.Service.CountShifts(r.Context(), principal.UserID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}

func (h *Handler) CountAllShifts(w http.ResponseWriter, r *http.Request) {
	n, err := h.Service.CountAllShifts(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CountResponse{Count: n})
}
