package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/shifts-logger/internal/session"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/google/uuid"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Resolver", func() {
	var (
		ctx      context.Context
		users    *memoryUserRepo
		sessions *session.MemoryStore
		resolver *Resolver
	)

	addSession := func(userID string, revoked bool, expiresAt time.Time) *session.Session {
		s := &session.Session{ID: uuid.NewString(), UserID: userID, ExpiresAt: expiresAt}
		gomega.Expect(sessions.Create(ctx, s)).To(gomega.Succeed())
		if revoked {
			gomega.Expect(sessions.Revoke(ctx, s)).To(gomega.Succeed())
		}
		return s
	}

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		users = newMemoryUserRepo()
		users.users["u1"] = &user.User{ID: "u1", Email: "a@x.com"}
		sessions = session.NewMemoryStore()
		resolver = NewResolver(user.NewService(users, 4, quietLogger()), sessions)
	})

	ginkgo.It("returns NotFound for an unknown user", func() {
		decision, err := resolver.Resolve(ctx, "ghost")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(decision).To(gomega.Equal(DecisionNotFound))
	})

	ginkgo.It("returns NotFound for an empty subject", func() {
		decision, err := resolver.Resolve(ctx, "")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(decision).To(gomega.Equal(DecisionNotFound))
	})

	ginkgo.It("returns Unauthorized when the user never logged in", func() {
		decision, err := resolver.Resolve(ctx, "u1")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(decision).To(gomega.Equal(DecisionUnauthorized))
	})

	ginkgo.It("returns Authorized when the latest session is live", func() {
		addSession("u1", false, time.Now().Add(time.Hour))
		decision, err := resolver.Resolve(ctx, "u1")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(decision).To(gomega.Equal(DecisionAuthorized))
	})

	ginkgo.It("only looks at the latest session", func() {
		// Given an older live session and a newer revoked one
		addSession("u1", false, time.Now().Add(time.Hour))
		addSession("u1", true, time.Now().Add(time.Hour))

		// When
		decision, err := resolver.Resolve(ctx, "u1")

		// Then
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(decision).To(gomega.Equal(DecisionUnauthorized))
	})

	ginkgo.It("does not check the session expiry", func() {
		addSession("u1", false, time.Now().Add(-24*time.Hour))
		decision, err := resolver.Resolve(ctx, "u1")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(decision).To(gomega.Equal(DecisionAuthorized))
	})

	ginkgo.It("surfaces storage failures", func() {
		users.setError(errors.New("db down"))
		defer users.clearError()

		_, err := resolver.Resolve(ctx, "u1")
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})
