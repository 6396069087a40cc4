package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/session"
	"github.com/frahmantamala/shifts-logger/internal/transport"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		router    *chi.Mux
		users     *memoryUserRepo
		directory *user.Service
	)

	ginkgo.BeforeEach(func() {
		users = newMemoryUserRepo()
		directory = user.NewService(users, bcrypt.MinCost, quietLogger())
		svc := NewService(directory, session.NewMemoryStore(), NewTokenIssuer(testTokenConfig()), nil, nil, quietLogger())
		base := transport.NewBaseHandler(quietLogger())
		handler := NewHandler(base, svc)
		rbac := NewRBACAuthorization(NewPermissionChecker(), quietLogger())

		router = chi.NewRouter()
		router.Post("/api/auth/register", handler.Register)
		router.Post("/api/auth/login", handler.Login)
		router.With(handler.TokenMiddleware).Post("/api/auth/logout", handler.Logout)
		router.Group(func(r chi.Router) {
			r.Use(handler.AuthMiddleware)
			r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
				principal, _ := internal.PrincipalFromContext(r.Context())
				base.WriteMessage(w, http.StatusOK, principal.Role)
			})
			r.With(rbac.RequireAdmin()).Get("/api/admin", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			r.With(rbac.Middleware(PermissionCountAllShifts)).Get("/api/admin/count", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
		})
	})

	do := func(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	message := func(rec *httptest.ResponseRecorder) string {
		var body map[string]interface{}
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		msg, _ := body["message"].(string)
		return msg
	}

	loginAs := func(email string) TokenPair {
		rec := do(http.MethodPost, "/api/auth/login", LoginDTO{Email: email, Password: "Pa$$w0rd"}, "")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var tokens TokenPair
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(gomega.Succeed())
		return tokens
	}

	ginkgo.Describe("POST /api/auth/register", func() {
		ginkgo.It("returns the success message", func() {
			rec := do(http.MethodPost, "/api/auth/register", registration("g@x.com"), "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(message(rec)).To(gomega.Equal("Registration successful"))
		})

		ginkgo.It("returns 409 for a taken email", func() {
			do(http.MethodPost, "/api/auth/register", registration("g@x.com"), "")
			rec := do(http.MethodPost, "/api/auth/register", registration("g@x.com"), "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
		})

		ginkgo.It("returns 400 for a weak password", func() {
			dto := registration("g@x.com")
			dto.Password = "password"
			rec := do(http.MethodPost, "/api/auth/register", dto, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(message(rec)).To(gomega.ContainSubstring("uppercase"))
		})

		ginkgo.It("returns 400 for a malformed email", func() {
			dto := registration("not-an-email")
			rec := do(http.MethodPost, "/api/auth/register", dto, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("returns 400 for an unknown department", func() {
			dto := registration("g@x.com")
			dto.Department = "Catering"
			rec := do(http.MethodPost, "/api/auth/register", dto, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("POST /api/auth/login", func() {
		ginkgo.BeforeEach(func() {
			do(http.MethodPost, "/api/auth/register", registration("g@x.com"), "")
		})

		ginkgo.It("returns both tokens", func() {
			tokens := loginAs("g@x.com")
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("returns 404 for an unknown user", func() {
			rec := do(http.MethodPost, "/api/auth/login", LoginDTO{Email: "no@x.com", Password: "Pa$$w0rd"}, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("returns 400 for a wrong password", func() {
			rec := do(http.MethodPost, "/api/auth/login", LoginDTO{Email: "g@x.com", Password: "nope"}, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(message(rec)).To(gomega.Equal("Invalid credentials"))
		})

		ginkgo.It("returns 400 for a malformed email", func() {
			rec := do(http.MethodPost, "/api/auth/login", LoginDTO{Email: "nope", Password: "Pa$$w0rd"}, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("returns 400 for a body that is not JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware and logout", func() {
		ginkgo.BeforeEach(func() {
			do(http.MethodPost, "/api/auth/register", registration("g@x.com"), "")
		})

		ginkgo.It("requires a bearer token", func() {
			rec := do(http.MethodGet, "/api/ping", nil, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("admits a logged in caller", func() {
			tokens := loginAs("g@x.com")
			rec := do(http.MethodGet, "/api/ping", nil, tokens.AccessToken)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(message(rec)).To(gomega.Equal(user.RoleEmployee))
		})

		ginkgo.It("logs out once and then refuses the token", func() {
			// Given
			tokens := loginAs("g@x.com")

			// When
			rec := do(http.MethodPost, "/api/auth/logout", nil, tokens.AccessToken)

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(message(rec)).To(gomega.Equal("Logout successful"))

			rec = do(http.MethodPost, "/api/auth/logout", nil, tokens.AccessToken)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(message(rec)).To(gomega.Equal("invalid authorization"))

			rec = do(http.MethodGet, "/api/ping", nil, tokens.AccessToken)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("returns 404 when the token's user no longer exists", func() {
			tokens := loginAs("g@x.com")
			u, err := directory.FindByEmail(context.Background(), "g@x.com")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			delete(users.users, u.ID)

			rec := do(http.MethodGet, "/api/ping", nil, tokens.AccessToken)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})

		ginkgo.It("logs out an older session the resolver no longer sees", func() {
			// Given two logins
			first := loginAs("g@x.com")
			second := loginAs("g@x.com")

			// When the latest session is logged out
			gomega.Expect(do(http.MethodPost, "/api/auth/logout", nil, second.AccessToken).Code).To(gomega.Equal(http.StatusOK))

			// Then the first token is refused elsewhere but may still log out
			gomega.Expect(do(http.MethodGet, "/api/ping", nil, first.AccessToken).Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(do(http.MethodPost, "/api/auth/logout", nil, first.AccessToken).Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(do(http.MethodPost, "/api/auth/logout", nil, first.AccessToken).Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("refuses logout without a bearer token", func() {
			rec := do(http.MethodPost, "/api/auth/logout", nil, "")
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("forbids employees from admin routes", func() {
			tokens := loginAs("g@x.com")

			gomega.Expect(do(http.MethodGet, "/api/admin", nil, tokens.AccessToken).Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(do(http.MethodGet, "/api/admin/count", nil, tokens.AccessToken).Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("lets admins through", func() {
			hash, err := directory.HashPassword("Pa$$w0rd")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(users.Create(context.Background(), &user.User{ID: "admin-1", Email: "admin@example.com", PasswordHash: hash}, []string{user.RoleAdmin})).To(gomega.Succeed())

			tokens := loginAs("admin@example.com")

			gomega.Expect(do(http.MethodGet, "/api/admin", nil, tokens.AccessToken).Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(do(http.MethodGet, "/api/admin/count", nil, tokens.AccessToken).Code).To(gomega.Equal(http.StatusNoContent))
		})
	})
})
