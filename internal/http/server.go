// Package http provides HTTP server implementation and route wiring.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/allisson/notehub/internal/auth/http"
	identityHTTP "github.com/allisson/notehub/internal/identity/http"
	"github.com/allisson/notehub/internal/metrics"
	noteHTTP "github.com/allisson/notehub/internal/note/http"
	taskHTTP "github.com/allisson/notehub/internal/task/http"
)

// RouterConfig carries the handlers and optional middlewares the server
// routes to. Nil middlewares are skipped.
type RouterConfig struct {
	AuthHandler       *authHTTP.AuthHandler
	ProfileHandler    *identityHTTP.ProfileHandler
	NoteHandler       *noteHTTP.NoteHandler
	TaskHandler       *taskHTTP.TaskHandler
	SessionMiddleware gin.HandlerFunc
	RateLimiter       gin.HandlerFunc
	CORSEnabled       bool
	CORSAllowOrigins  string
	MeterProvider     metric.MeterProvider
	MetricsNamespace  string
}

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Routes are registered with
// SetupRouter before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the router and registers all application routes.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	// Anonymous authentication endpoints. Rate limited per client IP when
	// enabled.
	auth := v1.Group("/auth")
	if cfg.RateLimiter != nil {
		auth.Use(cfg.RateLimiter)
	}
	auth.POST("/register", cfg.AuthHandler.RegisterHandler)
	auth.POST("/login", cfg.AuthHandler.LoginHandler)
	auth.POST("/verify-2fa", cfg.AuthHandler.VerifySecondFactorHandler)
	auth.POST("/forgot-password", cfg.AuthHandler.ForgotPasswordHandler)
	auth.POST("/verify-2fa-reset", cfg.AuthHandler.VerifyResetSecondFactorHandler)
	auth.POST("/reset-password", cfg.AuthHandler.ResetPasswordHandler)

	// Everything below requires an authenticated session.
	authenticated := v1.Group("")
	authenticated.Use(cfg.SessionMiddleware)

	authenticated.POST("/auth/logout", cfg.AuthHandler.LogoutHandler)
	authenticated.POST("/invitations", cfg.AuthHandler.CreateInvitationHandler)
	authenticated.GET("/invitations", cfg.AuthHandler.ListInvitationsHandler)

	authenticated.GET("/profile", cfg.ProfileHandler.GetHandler)
	authenticated.PUT("/profile", cfg.ProfileHandler.UpdateHandler)
	authenticated.POST("/profile/theme", cfg.ProfileHandler.ToggleThemeHandler)
	authenticated.GET("/profile/stats", cfg.ProfileHandler.StatsHandler)
	authenticated.POST("/profile/2fa/setup", cfg.ProfileHandler.SetupSecondFactorHandler)
	authenticated.POST("/profile/2fa/confirm", cfg.ProfileHandler.ConfirmSecondFactorHandler)
	authenticated.DELETE("/profile/2fa", cfg.ProfileHandler.DisableSecondFactorHandler)

	authenticated.POST("/notes", cfg.NoteHandler.CreateHandler)
	authenticated.GET("/notes", cfg.NoteHandler.ListHandler)
	authenticated.GET("/notes/:id", cfg.NoteHandler.GetHandler)
	authenticated.PUT("/notes/:id", cfg.NoteHandler.UpdateHandler)
	authenticated.DELETE("/notes/:id", cfg.NoteHandler.DeleteHandler)
	authenticated.POST("/notes/:id/pin", cfg.NoteHandler.TogglePinHandler)
	authenticated.POST("/notes/:id/favorite", cfg.NoteHandler.ToggleFavoriteHandler)
	authenticated.POST("/notes/:id/archive", cfg.NoteHandler.ToggleArchiveHandler)
	authenticated.POST("/notes/:id/shares", cfg.NoteHandler.ShareHandler)
	authenticated.GET("/notes/:id/shares", cfg.NoteHandler.ListGrantsHandler)
	authenticated.DELETE("/notes/:id/shares/:grantee_id", cfg.NoteHandler.UnshareHandler)

	authenticated.POST("/tasks", cfg.TaskHandler.CreateHandler)
	authenticated.GET("/tasks", cfg.TaskHandler.ListHandler)
	authenticated.GET("/tasks/counts", cfg.TaskHandler.CountsHandler)
	authenticated.GET("/tasks/:id", cfg.TaskHandler.GetHandler)
	authenticated.PUT("/tasks/:id", cfg.TaskHandler.UpdateHandler)
	authenticated.DELETE("/tasks/:id", cfg.TaskHandler.DeleteHandler)
	authenticated.POST("/tasks/:id/complete", cfg.TaskHandler.ToggleCompleteHandler)

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic. The
// database must be reachable.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil || s.db.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"components": gin.H{
				"database": "error",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"components": gin.H{
			"database": "ok",
		},
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
