// Package http provides the HTTP server, router and cross-cutting middleware.
package http

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	authHTTP "github.com/allisson/tokenauth/internal/auth/http"
	authUseCase "github.com/allisson/tokenauth/internal/auth/usecase"
	"github.com/allisson/tokenauth/internal/config"
	"github.com/allisson/tokenauth/internal/metrics"
)

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: newHTTPServer(host, port, nil),
	}
}

// RouterDeps groups the collaborators the API routes need.
type RouterDeps struct {
	AuthUseCase     authUseCase.AuthUseCase
	AuthHandler     *authHTTP.AuthHandler
	IdentityHandler *authHTTP.IdentityHandler
	DemoHandler     *authHTTP.DemoHandler
	TokenCarrier    *authHTTP.TokenCarrier
	RoutePolicy     *authDomain.RoutePolicy
	// MetricsProvider is nil when metrics are disabled.
	MetricsProvider *metrics.Provider
	DecisionMetrics metrics.DecisionMetrics
}

// SetupRouter builds the gin router. Every route except /health and /ready passes through
// authentication and the route policy. ctx bounds the rate limiter cleanup goroutines.
func (s *Server) SetupRouter(ctx context.Context, cfg *config.Config, deps RouterDeps) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if deps.MetricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MetricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(
		cfg.CORSEnabled,
		cfg.CORSAllowOrigins,
		cfg.AuthTokenCarrier,
		s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	decisions := deps.DecisionMetrics
	if decisions == nil {
		decisions = metrics.NewNoOpDecisionMetrics()
	}

	authn := authHTTP.AuthenticationMiddleware(deps.AuthUseCase, deps.TokenCarrier, s.logger)
	authz := authHTTP.AuthorizationMiddleware(deps.RoutePolicy, decisions, s.logger)

	protected := router.Group("")
	protected.Use(authn, authz)
	if cfg.RateLimitEnabled {
		protected.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	credentialRoutes := []gin.HandlerFunc{}
	if cfg.RateLimitAuthEnabled {
		credentialRoutes = append(credentialRoutes, authHTTP.TokenRateLimitMiddleware(
			ctx,
			cfg.RateLimitAuthRequestsPerSec,
			cfg.RateLimitAuthBurst,
			s.logger,
		))
	}

	auth := protected.Group("/api/v1/auth")
	{
		auth.POST("/register", append(credentialRoutes, deps.AuthHandler.RegisterHandler)...)
		auth.POST("/authenticate", append(credentialRoutes, deps.AuthHandler.AuthenticateHandler)...)
		auth.GET("/me", deps.AuthHandler.MeHandler)
	}

	protected.GET("/api/v1/greeting-controller", deps.DemoHandler.GreetingHandler)
	protected.GET("/api/v1/demo-controller", deps.DemoHandler.DemoHandler)
	protected.GET("/api/v1/demo-controller/with-auth", deps.DemoHandler.WithAuthHandler)
	protected.GET("/api/v1/index-controller/index", deps.DemoHandler.IndexHandler)
	protected.GET("/api/v1/admin/identities/:email", deps.IdentityHandler.GetHandler)
	protected.POST("/logout", deps.AuthHandler.LogoutHandler)

	// Unregistered paths still meet the policy, so an unlisted route is denied before it is 404.
	router.NoRoute(authn, authz, func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	s.router = router
}

// Handler returns the configured router, or nil before SetupRouter.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	return listenAndServe(s.server, s.logger, "http")
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness, checking the identity store connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}
	ready := true

	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", "database"), slog.Any("error", err))
			components["database"] = "error"
			ready = false
		} else {
			components["database"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
