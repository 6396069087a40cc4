package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/session"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultAccessTokenTTL = 30 * time.Minute
	refreshSecretBytes    = 64
)

type TokenConfig struct {
	Key        string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func TokenConfigFrom(sec internal.SecurityConfig) TokenConfig {
	return TokenConfig{
		Key:        sec.JWTKey,
		Issuer:     sec.Issuer,
		Audience:   sec.Audience,
		AccessTTL:  sec.AccessTokenDuration,
		RefreshTTL: sec.RefreshTokenTTL(),
	}
}

// TokenIssuer signs HS256 access tokens and mints refresh sessions.
type TokenIssuer struct {
	key        []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) *TokenIssuer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		key:        []byte(cfg.Key),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// IssueAccessToken signs a token for u acting as role. The returned jti
// is the token's unique id and must be stored on the refresh session.
func (t *TokenIssuer) IssueAccessToken(u *user.User, role string, permissions []string) (string, string, error) {
	now := t.now()
	jti := uuid.NewString()

	claims := &Claims{
		Email:       u.Email,
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        jti,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{t.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, jti, nil
}

// IssueRefreshToken mints an unsaved session holding a fresh 64 byte
// secret. It panics if the system random source fails.
func (t *TokenIssuer) IssueRefreshToken(jti, userID string) *session.Session {
	buf := make([]byte, refreshSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("auth: reading random source: %v", err))
	}

	now := t.now().UTC()
	return &session.Session{
		ID:          uuid.NewString(),
		UserID:      userID,
		JTI:         jti,
		TokenSecret: base64.StdEncoding.EncodeToString(buf),
		IssuedAt:    now,
		ExpiresAt:   now.Add(t.refreshTTL),
	}
}

// ValidateAccessToken checks signature, algorithm, issuer, audience and
// lifetime, returning the decoded claims.
func (t *TokenIssuer) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return t.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithTimeFunc(t.now),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired.WithCause(err)
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}
	return claims, nil
}

func (t *TokenIssuer) AccessTTL() time.Duration {
	return t.accessTTL
}
