package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/shifts-logger/internal/auth"
	"github.com/frahmantamala/shifts-logger/internal/metrics"
	"github.com/frahmantamala/shifts-logger/internal/shift"
	"github.com/frahmantamala/shifts-logger/internal/transport/middleware"
	"github.com/frahmantamala/shifts-logger/internal/transport/swagger"
	"github.com/frahmantamala/shifts-logger/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything the router mounts. Nil optional members
// leave their routes out.
type Handlers struct {
	Health  *HealthHandler
	Auth    *auth.Handler
	RBAC    *auth.RBACAuthorization
	User    *user.Handler
	Shift   *shift.Handler
	OpenAPI *swagger.Document
	Metrics *metrics.Metrics
}

type RouterConfig struct {
	AllowedOrigins string
	MetricsPath    string
}

func NewRouter(h Handlers, cfg RouterConfig, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()
	RegisterAllRoutes(router, h, cfg, logger)
	return router
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, cfg RouterConfig, logger *slog.Logger) {
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if h.Metrics != nil {
		router.Use(h.Metrics.Middleware)
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Method(http.MethodGet, path, h.Metrics.Handler())
	}

	if h.Health != nil {
		router.Get("/ping", h.Health.Ping)
		router.Get("/health", h.Health.Health)
	}

	if h.OpenAPI != nil {
		router.Method(http.MethodGet, swagger.DocumentPath, h.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.With(h.Auth.TokenMiddleware).Post("/logout", h.Auth.Logout)
		})

		// Everything below requires a live session.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.With(h.RBAC.Middleware(auth.PermissionReadProfile)).Get("/users/me", h.User.GetCurrentUser)
			}

			if h.Shift != nil {
				pr.Route("/shifts", func(sr chi.Router) {
					sr.Group(func(er chi.Router) {
						er.Use(h.RBAC.RequireRoles(user.RoleEmployee, user.RoleAdmin))

						er.Post("/add", h.Shift.AddShift)
						er.Put("/update/{id}", h.Shift.UpdateShift)
						er.Delete("/delete/{id}", h.Shift.DeleteShift)
						er.Get("/", h.Shift.ListShifts)
						er.Get("/count", h.Shift.CountShifts)
						er.Get("/{id}", h.Shift.GetShift)
					})

					sr.Group(func(adm chi.Router) {
						adm.Use(h.RBAC.RequireAdmin())

						adm.Get("/admin", h.RBAC.Check(h.Shift.ListAllShifts, auth.PermissionReadAllShifts))
						adm.Get("/admin/count", h.RBAC.Check(h.Shift.CountAllShifts, auth.PermissionCountAllShifts))
					})
				})
			}
		})
	})
}
