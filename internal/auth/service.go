package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/core/events"
	"github.com/frahmantamala/shifts-logger/internal/session"
	"github.com/frahmantamala/shifts-logger/internal/user"
)

type Service struct {
	users     UserDirectory
	sessions  session.Store
	tokens    *TokenIssuer
	resolver  *Resolver
	roles     RoleClaimSource
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(
	users UserDirectory,
	sessions session.Store,
	tokens *TokenIssuer,
	roles RoleClaimSource,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	if roles == nil {
		roles = NewPermissionChecker()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		resolver:  NewResolver(users, sessions),
		roles:     roles,
		publisher: publisher,
		logger:    logger,
	}
}

// Register creates an employee account. Conflict and Validation errors
// pass through; anything else is reported as Internal.
func (s *Service) Register(ctx context.Context, dto user.RegisterDTO) error {
	u, err := s.users.Create(ctx, dto)
	if err != nil {
		switch internal.KindOf(err) {
		case internal.ErrorTypeConflict, internal.ErrorTypeValidation:
			return err
		default:
			return internal.NewInternalError("Registration failed", err)
		}
	}

	s.publish(ctx, events.NewUserRegisteredEvent(u.ID, u.Email, string(u.Department)))
	return nil
}

// Login verifies credentials and opens a new session. Earlier sessions
// are left as they are; the new one becomes the latest.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return TokenPair{}, internal.ErrUserNotFound
		}
		s.logger.Error("login lookup failed", "error", err)
		return TokenPair{}, internal.NewInternalError("Login failed", err)
	}

	if !s.users.CheckPassword(u, dto.Password) {
		s.logger.Warn("login rejected: bad password", "user_id", u.ID)
		return TokenPair{}, internal.ErrInvalidCredentials
	}

	role := u.PrimaryRole()
	claims, err := s.roles.ClaimsForRole(ctx, role)
	if err != nil {
		return TokenPair{}, internal.NewInternalError("Login failed", err)
	}

	accessToken, jti, err := s.tokens.IssueAccessToken(u, role, claims)
	if err != nil {
		s.logger.Error("access token issue failed", "error", err, "user_id", u.ID)
		return TokenPair{}, internal.NewInternalError("Login failed", err)
	}

	refresh := s.tokens.IssueRefreshToken(jti, u.ID)
	if err := s.sessions.Create(ctx, refresh); err != nil {
		s.logger.Error("session create failed", "error", err, "user_id", u.ID)
		return TokenPair{}, internal.NewInternalError("Login failed", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID, "role", role, "session_id", refresh.ID)
	s.publish(ctx, events.NewUserLoggedInEvent(u.ID, role, refresh.ID, jti))

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refresh.TokenSecret,
	}, nil
}

// Logout revokes the caller's most recent active session.
func (s *Service) Logout(ctx context.Context, userID string) error {
	active, err := s.sessions.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return internal.ErrInvalidAuthorization
		}
		return internal.NewInternalError("Logout failed", err)
	}

	if err := s.sessions.Revoke(ctx, active); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return internal.ErrInvalidAuthorization
		}
		return internal.NewInternalError("Logout failed", err)
	}

	s.logger.Info("user logged out", "user_id", userID, "session_id", active.ID)
	s.publish(ctx, events.NewUserLoggedOutEvent(userID, active.ID))
	return nil
}

// Authenticate validates an access token and resolves its subject. A
// token error is returned as-is; Decision is meaningful only when err is nil.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Claims, Decision, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, DecisionUnauthorized, err
	}

	decision, err := s.resolver.Resolve(ctx, claims.Subject)
	if err != nil {
		return nil, DecisionNotFound, internal.NewInternalError("authorization lookup failed", err)
	}
	return claims, decision, nil
}

// VerifyAccessToken checks the token alone, without consulting sessions.
func (s *Service) VerifyAccessToken(accessToken string) (*Claims, error) {
	return s.tokens.ValidateAccessToken(accessToken)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", "event_type", event.EventType(), "error", err)
	}
}
