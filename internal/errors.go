package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodePasswordPolicy   ErrorCode = "PASSWORD_POLICY"
	ErrCodeInvalidDept      ErrorCode = "INVALID_DEPARTMENT"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidPage      ErrorCode = "INVALID_PAGE"

	ErrCodeEmailTaken   ErrorCode = "EMAIL_TAKEN"
	ErrCodeUserNotFound ErrorCode = "USER_NOT_FOUND"

	ErrCodeInvalidCredentials   ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidAuthorization ErrorCode = "INVALID_AUTHORIZATION"
	ErrCodeInvalidToken         ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired         ErrorCode = "TOKEN_EXPIRED"
	ErrCodeInsufficientRole     ErrorCode = "INSUFFICIENT_ROLE"

	ErrCodeShiftNotFound    ErrorCode = "SHIFT_NOT_FOUND"
	ErrCodeShiftOwnership   ErrorCode = "SHIFT_OWNERSHIP"
	ErrCodeShiftStoreFailed ErrorCode = "SHIFT_STORE_FAILED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// GetDetailedMessage joins field-level messages, falling back to Message.
func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy carrying cause, so shared sentinels stay untouched.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Is matches AppErrors sharing type and code, so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrEmailTaken           = NewConflictError("A user with this email address already exists", ErrCodeEmailTaken)
	ErrUserNotFound         = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrInvalidCredentials   = NewValidationError("Invalid credentials", ErrCodeInvalidCredentials)
	ErrInvalidAuthorization = NewUnauthorizedError("invalid authorization", ErrCodeInvalidAuthorization)
	ErrInvalidToken         = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired         = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrInsufficientRole     = NewForbiddenError("Forbidden: insufficient role", ErrCodeInsufficientRole)
)

// IsAppError finds the first AppError in err's chain.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the taxonomy kind of err; anything that is not an
// AppError is internal.
func KindOf(err error) ErrorType {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
