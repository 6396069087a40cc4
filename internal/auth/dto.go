package auth

import (
	"github.com/frahmantamala/shifts-logger/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks required fields and the email shape.
func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
