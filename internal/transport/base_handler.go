package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Code    int                        `json:"code"`
	Message string                     `json:"message"`
	Errors  []internal.ValidationError `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteMessage(w http.ResponseWriter, status int, message string) {
	h.WriteJSON(w, status, MessageResponse{Message: message})
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.writeError(w, ErrorResponse{Code: status, Message: message})
}

// WriteAppError maps err onto its status code. Errors outside the
// taxonomy become a 500 without leaking their text.
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("unhandled error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := ErrorResponse{Code: appErr.StatusCode, Message: appErr.Message}
	if details, ok := appErr.Details.(internal.ValidationErrors); ok {
		resp.Errors = details.Errors
		resp.Message = appErr.GetDetailedMessage()
	}
	if appErr.Type == internal.ErrorTypeInternal && appErr.Cause != nil {
		h.Logger.Error("internal error", "error", appErr.Cause, "message", appErr.Message)
	}
	h.writeError(w, resp)
}

// WriteUnprocessable reports a request body that failed shape validation.
func (h *BaseHandler) WriteUnprocessable(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		resp.Message = appErr.GetDetailedMessage()
		if details, ok := appErr.Details.(internal.ValidationErrors); ok {
			resp.Errors = details.Errors
		}
	}
	h.writeError(w, resp)
}

func (h *BaseHandler) writeError(w http.ResponseWriter, resp ErrorResponse) {
	if resp.Code >= http.StatusInternalServerError {
		h.Logger.Error("http error", "status", resp.Code, "message", resp.Message)
	} else {
		h.Logger.Debug("http error", "status", resp.Code, "message", resp.Message)
	}
	h.WriteJSON(w, resp.Code, resp)
}

// DecodeJSON reads a JSON request body, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
