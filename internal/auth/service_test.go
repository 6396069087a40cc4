package auth

import (
	"context"
	"errors"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/core/events"
	"github.com/frahmantamala/shifts-logger/internal/session"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.types = append(p.types, e.EventType())
	return nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx       context.Context
		users     *memoryUserRepo
		directory *user.Service
		sessions  *session.MemoryStore
		issuer    *TokenIssuer
		publisher *recordingPublisher
		service   *Service
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		users = newMemoryUserRepo()
		directory = user.NewService(users, bcrypt.MinCost, quietLogger())
		sessions = session.NewMemoryStore()
		issuer = NewTokenIssuer(testTokenConfig())
		publisher = &recordingPublisher{}
		service = NewService(directory, sessions, issuer, NewPermissionChecker(), publisher, quietLogger())
	})

	login := func(email string) TokenPair {
		tokens, err := service.Login(ctx, LoginDTO{Email: email, Password: "Pa$$w0rd"})
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return tokens
	}

	userIDFor := func(email string) string {
		u, err := directory.FindByEmail(ctx, email)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		return u.ID
	}

	ginkgo.Describe("Register", func() {
		ginkgo.It("creates the account and announces it", func() {
			gomega.Expect(service.Register(ctx, registration("g@x.com"))).To(gomega.Succeed())
			gomega.Expect(publisher.types).To(gomega.Equal([]string{events.EventTypeUserRegistered}))
		})

		ginkgo.It("reports a repeated email as a conflict", func() {
			// Given
			gomega.Expect(service.Register(ctx, registration("g@x.com"))).To(gomega.Succeed())

			// When
			err := service.Register(ctx, registration("g@x.com"))

			// Then
			gomega.Expect(internal.KindOf(err)).To(gomega.Equal(internal.ErrorTypeConflict))
		})

		ginkgo.It("reports a policy violation as a validation error", func() {
			dto := registration("g@x.com")
			dto.Password = "short"

			err := service.Register(ctx, dto)

			gomega.Expect(internal.KindOf(err)).To(gomega.Equal(internal.ErrorTypeValidation))
		})

		ginkgo.It("reports anything else as internal", func() {
			users.setError(errors.New("disk full"))
			defer users.clearError()

			err := service.Register(ctx, registration("g@x.com"))

			gomega.Expect(internal.KindOf(err)).To(gomega.Equal(internal.ErrorTypeInternal))
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(service.Register(ctx, registration("g@x.com"))).To(gomega.Succeed())
		})

		ginkgo.It("binds the session to the access token jti", func() {
			// When
			tokens := login("g@x.com")

			// Then
			claims, err := issuer.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			latest, err := sessions.FindLatestByUser(ctx, claims.Subject)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(latest.JTI).To(gomega.Equal(claims.ID))
			gomega.Expect(latest.TokenSecret).To(gomega.Equal(tokens.RefreshToken))
			gomega.Expect(claims.Role).To(gomega.Equal(user.RoleEmployee))
		})

		ginkgo.It("returns NotFound for an unknown email", func() {
			_, err := service.Login(ctx, LoginDTO{Email: "nobody@x.com", Password: "Pa$$w0rd"})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})

		ginkgo.It("rejects a wrong password and accepts the right one afterwards", func() {
			// When
			_, err := service.Login(ctx, LoginDTO{Email: "g@x.com", Password: "Wr0ng!pass"})

			// Then
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			appErr, _ := internal.IsAppError(err)
			gomega.Expect(appErr.StatusCode).To(gomega.Equal(400))
			gomega.Expect(sessions.Len()).To(gomega.Equal(0))

			login("g@x.com")
			gomega.Expect(sessions.Len()).To(gomega.Equal(1))
		})

		ginkgo.It("keeps earlier sessions active", func() {
			// Given
			login("g@x.com")
			id := userIDFor("g@x.com")
			first, err := sessions.FindLatestByUser(ctx, id)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			// When
			login("g@x.com")

			// Then
			latest, err := sessions.FindLatestByUser(ctx, id)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(latest.ID).NotTo(gomega.Equal(first.ID))
			gomega.Expect(sessions.Len()).To(gomega.Equal(2))
			gomega.Expect(latest.Revoked).To(gomega.BeFalse())
		})

		ginkgo.It("uses the first assigned role", func() {
			// Given
			hash, err := directory.HashPassword("Pa$$w0rd")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			admin := &user.User{ID: "admin-1", Email: "admin@example.com", PasswordHash: hash}
			gomega.Expect(users.Create(ctx, admin, []string{user.RoleAdmin, user.RoleEmployee})).To(gomega.Succeed())

			// When
			tokens := login("admin@example.com")

			// Then
			claims, err := issuer.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.Role).To(gomega.Equal(user.RoleAdmin))
			gomega.Expect(claims.Permissions).To(gomega.ContainElement(PermissionReadAllShifts))
		})

		ginkgo.It("falls back to employee for a user without roles", func() {
			hash, err := directory.HashPassword("Pa$$w0rd")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(users.Create(ctx, &user.User{ID: "bare", Email: "bare@x.com", PasswordHash: hash}, nil)).To(gomega.Succeed())

			tokens := login("bare@x.com")

			claims, err := issuer.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.Role).To(gomega.Equal(user.RoleEmployee))
		})
	})

	ginkgo.Describe("Logout", func() {
		var id string

		ginkgo.BeforeEach(func() {
			gomega.Expect(service.Register(ctx, registration("g@x.com"))).To(gomega.Succeed())
			id = userIDFor("g@x.com")
		})

		ginkgo.It("refuses a caller that never logged in", func() {
			err := service.Logout(ctx, id)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidAuthorization))
		})

		ginkgo.It("revokes the session and blocks the token afterwards", func() {
			// Given
			tokens := login("g@x.com")
			_, decision, err := service.Authenticate(ctx, tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(decision).To(gomega.Equal(DecisionAuthorized))

			// When
			gomega.Expect(service.Logout(ctx, id)).To(gomega.Succeed())

			// Then
			_, decision, err = service.Authenticate(ctx, tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(decision).To(gomega.Equal(DecisionUnauthorized))
			gomega.Expect(publisher.types).To(gomega.ContainElement(events.EventTypeUserLoggedOut))
		})

		ginkgo.It("treats a second logout as unauthorized", func() {
			login("g@x.com")
			gomega.Expect(service.Logout(ctx, id)).To(gomega.Succeed())

			err := service.Logout(ctx, id)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidAuthorization))
		})

		ginkgo.It("revokes only the most recent active session", func() {
			// Given two logins
			login("g@x.com")
			login("g@x.com")

			// When
			gomega.Expect(service.Logout(ctx, id)).To(gomega.Succeed())

			// Then the older one is still active
			active, err := sessions.FindActiveByUser(ctx, id)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			latest, err := sessions.FindLatestByUser(ctx, id)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(latest.Revoked).To(gomega.BeTrue())
			gomega.Expect(active.ID).NotTo(gomega.Equal(latest.ID))
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("reports NotFound for a token whose user is gone", func() {
			gomega.Expect(service.Register(ctx, registration("g@x.com"))).To(gomega.Succeed())
			tokens := login("g@x.com")
			delete(users.users, userIDFor("g@x.com"))

			_, decision, err := service.Authenticate(ctx, tokens.AccessToken)

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(decision).To(gomega.Equal(DecisionNotFound))
		})

		ginkgo.It("returns the token error for a bad token", func() {
			_, _, err := service.Authenticate(ctx, "garbage")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})
})
