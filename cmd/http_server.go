package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/auth"
	"github.com/frahmantamala/shifts-logger/internal/core/events"
	"github.com/frahmantamala/shifts-logger/internal/metrics"
	sessionPostgres "github.com/frahmantamala/shifts-logger/internal/session/postgres"
	"github.com/frahmantamala/shifts-logger/internal/shift"
	shiftPostgres "github.com/frahmantamala/shifts-logger/internal/shift/postgres"
	"github.com/frahmantamala/shifts-logger/internal/transport"
	"github.com/frahmantamala/shifts-logger/internal/transport/rest"
	"github.com/frahmantamala/shifts-logger/internal/transport/swagger"
	"github.com/frahmantamala/shifts-logger/internal/user"
	userPostgres "github.com/frahmantamala/shifts-logger/internal/user/postgres"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	lg := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		lg.Info("Starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = deps.DB.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		lg.Error("Server shutdown error", "error", err)
	}
	// let in-flight event handlers finish before the pool goes away
	if err := deps.Bus.Wait(ctx); err != nil {
		lg.Warn("Event handlers still running at shutdown", "error", err)
	}
	if err := deps.DB.Close(); err != nil {
		lg.Error("Database close error", "error", err)
	}

	lg.Info("Server stopped")
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := setupLogger(cfg)

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gormDB, err := initGorm(db, lg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	bus.SubscribeAll(logEvent(lg), events.AuthEventTypes...)
	bus.SubscribeAll(logEvent(lg), events.ShiftEventTypes...)

	var m *metrics.Metrics
	if cfg.Observability.Metrics.Enabled {
		m = metrics.New()
		m.Subscribe(bus)
	}

	var openAPI *swagger.Document
	if doc, err := swagger.Load(context.Background(), cfg.Server.OpenAPIPath); err != nil {
		lg.Warn("OpenAPI document unavailable; /openapi.yml and /swagger are disabled", "error", err)
	} else {
		openAPI = doc
	}

	users := user.NewService(userPostgres.NewUserRepository(gormDB), cfg.Security.BCryptCost, lg)
	sessions := sessionPostgres.NewSessionRepository(gormDB)
	tokens := auth.NewTokenIssuer(auth.TokenConfigFrom(cfg.Security))
	checker := auth.NewPermissionChecker()
	authService := auth.NewService(users, sessions, tokens, checker, bus, lg)
	shiftService := shift.NewService(shiftPostgres.NewShiftRepository(gormDB), bus, lg)

	base := transport.NewBaseHandler(lg)
	router := rest.NewRouter(rest.Handlers{
		Health:  rest.NewHealthHandler(map[string]rest.Pinger{"postgres": db}),
		Auth:    auth.NewHandler(base, authService),
		RBAC:    auth.NewRBACAuthorization(checker, lg),
		User:    user.NewHandler(base, users),
		Shift:   shift.NewHandler(base, shiftService),
		OpenAPI: openAPI,
		Metrics: m,
	}, rest.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsPath:    cfg.Observability.Metrics.Path,
	}, lg)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		Gorm:   gormDB,
		Bus:    bus,
		Router: router,
		Logger: lg,
	}, nil
}

// logEvent records every domain event at debug level.
func logEvent(lg *slog.Logger) events.Handler {
	return func(ctx context.Context, e events.Event) error {
		lg.DebugContext(ctx, "domain event",
			"event_id", e.EventID(),
			"event_type", e.EventType(),
			"payload", e.Payload())
		return nil
	}
}

// initDB opens the pgx-backed connection pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm wraps the existing pool; closing db closes both.
func initGorm(db *sqlx.DB, lg *slog.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if lg.Enabled(context.Background(), slog.LevelDebug) {
		level = gormlogger.Info
	}
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
}
