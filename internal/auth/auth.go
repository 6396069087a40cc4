package auth

import (
	"context"

	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/golang-jwt/jwt/v5"
)

// UserDirectory is the slice of the user service that authentication needs.
type UserDirectory interface {
	Create(ctx context.Context, dto user.RegisterDTO) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	FindByID(ctx context.Context, id string) (*user.User, error)
	CheckPassword(u *user.User, password string) bool
}

// ServiceAPI is what the HTTP layer calls.
type ServiceAPI interface {
	Register(ctx context.Context, dto user.RegisterDTO) error
	Login(ctx context.Context, dto LoginDTO) (TokenPair, error)
	Logout(ctx context.Context, userID string) error
	Authenticate(ctx context.Context, accessToken string) (*Claims, Decision, error)
	VerifyAccessToken(accessToken string) (*Claims, error)
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Claims carried by an access token. Subject, ID, Issuer and Audience
// live in the registered claims.
type Claims struct {
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	jwt.RegisteredClaims
}
