package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	echoMiddleware "github.com/casapps/casrecipes/src/internal/api/middleware"
	"github.com/casapps/casrecipes/src/internal/auth"
	apperrors "github.com/casapps/casrecipes/src/internal/errors"
)

// Server represents the main application server
type Server struct {
	echo        *echo.Echo
	config      *viper.Viper
	db          *gorm.DB
	auth        *auth.AuthService
	logger      *slog.Logger
	rateLimiter *echoMiddleware.RateLimiter
	startTime   time.Time
}

// New creates a new server instance
func New(e *echo.Echo, cfg *viper.Viper, db *gorm.DB, logger *slog.Logger) *Server {
	authService := auth.NewAuthService(
		cfg.GetString("security.secret_key"),
		cfg.GetString("app.name"),
		cfg.GetDuration("security.access_token_ttl"),
	)

	s := &Server{
		echo:        e,
		config:      cfg,
		db:          db,
		auth:        authService,
		logger:      logger,
		rateLimiter: echoMiddleware.NewRateLimiter(cfg),
		startTime:   time.Now(),
	}

	e.HideBanner = true
	e.Validator = NewEchoValidator()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(logger)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Start starts the server
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "  ${time_rfc3339} | ${status} | ${latency_human} | ${method} ${uri}\n",
	}))
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(echoMiddleware.CORS(s.config))
	s.echo.Use(s.rateLimiter.Middleware())

	s.echo.Use(echoMiddleware.DatabaseInjector(s.db))
	s.echo.Use(echoMiddleware.ConfigInjector(s.config))
}

// handleHealth reports process and database health
func (s *Server) handleHealth(c echo.Context) error {
	status := map[string]interface{}{
		"status":  "healthy",
		"version": s.config.GetString("app.version"),
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	}

	code := http.StatusOK
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.Ping() != nil {
		status["status"] = "unhealthy"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
