package user

import (
	"strings"
	"time"

	"github.com/frahmantamala/shifts-logger/internal"
	userDatamodel "github.com/frahmantamala/shifts-logger/internal/core/datamodel/user"
)

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// DefaultRole is used for users with no role assignment.
const DefaultRole = RoleEmployee

type Department string

const (
	DepartmentDevelopment           Department = "Development"
	DepartmentInformationTechnology Department = "InformationTechnology"
	DepartmentMarketing             Department = "Marketing"
	DepartmentSales                 Department = "Sales"
)

var Departments = []Department{
	DepartmentDevelopment,
	DepartmentInformationTechnology,
	DepartmentMarketing,
	DepartmentSales,
}

func DepartmentNames() []string {
	names := make([]string, len(Departments))
	for i, d := range Departments {
		names[i] = string(d)
	}
	return names
}

type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Department   Department `json:"department"`
	PasswordHash string     `json:"-"`
	Roles        []string   `json:"roles"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// PrimaryRole is the first assigned role, or DefaultRole when none is.
func (u *User) PrimaryRole() string {
	if len(u.Roles) == 0 || u.Roles[0] == "" {
		return DefaultRole
	}
	return u.Roles[0]
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail is the lookup key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	ErrNotFound   = internal.ErrUserNotFound
	ErrEmailTaken = internal.ErrEmailTaken
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Department:   string(u.Department),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Department:   Department(u.Department),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		Roles:        []string{},
	}
}

func FromDataModelWithRoles(u *userDatamodel.User, roles []string) *User {
	domainUser := FromDataModel(u)
	if roles != nil {
		domainUser.Roles = roles
	}
	return domainUser
}
