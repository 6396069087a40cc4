package user

import (
	"github.com/frahmantamala/shifts-logger/internal/core/common/validation"
)

// RegisterDTO is the registration payload.
type RegisterDTO struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Password   string `json:"password"`
}

// Validate checks required fields and the email shape. The password
// policy is enforced by the directory on Create.
func (d RegisterDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("firstName", d.FirstName).Required().MaxLength(100)
	v.Field("lastName", d.LastName).Required().MaxLength(100)
	v.Field("email", d.Email).Required().Email().MaxLength(256)
	v.Field("department", d.Department).Required().OneOf(DepartmentNames()...)
	v.Field("password", d.Password).Required()
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ProfileResponse is the /users/me view.
type ProfileResponse struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email"`
	Department Department `json:"department"`
	Role       string     `json:"role"`
	Roles      []string   `json:"roles"`
}

func (u *User) ToProfile() ProfileResponse {
	return ProfileResponse{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Department: u.Department,
		Role:       u.PrimaryRole(),
		Roles:      u.Roles,
	}
}
