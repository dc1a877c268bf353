// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/allisson/tokenauth/internal/config"
	"github.com/allisson/tokenauth/internal/database"
	"github.com/allisson/tokenauth/internal/http"
	"github.com/allisson/tokenauth/internal/metrics"
)

// dbConnectTimeout bounds the startup ping of the identity store.
const dbConnectTimeout = 10 * time.Second

// Container holds all application dependencies and provides methods to access them.
// Components are created on first access.
type Container struct {
	config *config.Config

	// Infrastructure
	logger    *slog.Logger
	db        *sql.DB
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	authMetrics     metrics.AuthMetrics
	decisionMetrics metrics.DecisionMetrics

	// Auth
	authComponents

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsProviderInit sync.Once
	authMetricsInit     sync.Once
	decisionMetricsInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger configured from the log level.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the identity store connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		c.db = db
		c.setInitError("db", err)
	})
	if err := c.initError("db"); err != nil {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		txManager, err := c.initTxManager()
		c.txManager = txManager
		c.setInitError("txManager", err)
	})
	if err := c.initError("txManager"); err != nil {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		provider, err := c.initMetricsProvider()
		c.metricsProvider = provider
		c.setInitError("metricsProvider", err)
	})
	if err := c.initError("metricsProvider"); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// AuthMetrics returns the auth operation metrics, a no-op when metrics are disabled.
func (c *Container) AuthMetrics() (metrics.AuthMetrics, error) {
	c.authMetricsInit.Do(func() {
		authMetrics, err := c.initAuthMetrics()
		c.authMetrics = authMetrics
		c.setInitError("authMetrics", err)
	})
	if err := c.initError("authMetrics"); err != nil {
		return nil, err
	}
	return c.authMetrics, nil
}

// DecisionMetrics returns the authorization decision metrics, a no-op when metrics are disabled.
func (c *Container) DecisionMetrics() (metrics.DecisionMetrics, error) {
	c.decisionMetricsInit.Do(func() {
		decisionMetrics, err := c.initDecisionMetrics()
		c.decisionMetrics = decisionMetrics
		c.setInitError("decisionMetrics", err)
	})
	if err := c.initError("decisionMetrics"); err != nil {
		return nil, err
	}
	return c.decisionMetrics, nil
}

// HTTPServer returns the API server with its router configured. ctx bounds the background
// work started by the router's middleware.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer(ctx)
		c.httpServer = server
		c.setInitError("httpServer", err)
	})
	if err := c.initError("httpServer"); err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus scrape server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		server, err := c.initMetricsServer()
		c.metricsServer = server
		c.setInitError("metricsServer", err)
	})
	if err := c.initError("metricsServer"); err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown releases every initialized resource.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

func (c *Container) setInitError(name string, err error) {
	if err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initErrors[name] = err
}

func (c *Container) initError(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// initLogger creates a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		ConnectTimeout:     dbConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	var attrs []attribute.KeyValue
	if c.config.Version != "" {
		attrs = append(attrs, attribute.String("service.version", c.config.Version))
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace, attrs...)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

func (c *Container) initAuthMetrics() (metrics.AuthMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for auth metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpAuthMetrics(), nil
	}
	return metrics.NewAuthMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initDecisionMetrics() (metrics.DecisionMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for decision metrics: %w", err)
	}
	if provider == nil {
		return metrics.NewNoOpDecisionMetrics(), nil
	}
	return metrics.NewDecisionMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	deps, err := c.routerDeps()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(ctx, c.config, deps)

	return server, nil
}

func (c *Container) routerDeps() (http.RouterDeps, error) {
	var deps http.RouterDeps
	var err error

	if deps.AuthUseCase, err = c.AuthUseCase(); err != nil {
		return deps, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}
	if deps.AuthHandler, err = c.AuthHandler(); err != nil {
		return deps, fmt.Errorf("failed to get auth handler for http server: %w", err)
	}
	if deps.IdentityHandler, err = c.IdentityHandler(); err != nil {
		return deps, fmt.Errorf("failed to get identity handler for http server: %w", err)
	}
	if deps.TokenCarrier, err = c.TokenCarrier(); err != nil {
		return deps, fmt.Errorf("failed to get token carrier for http server: %w", err)
	}
	if deps.RoutePolicy, err = c.RoutePolicy(); err != nil {
		return deps, fmt.Errorf("failed to get route policy for http server: %w", err)
	}
	if deps.MetricsProvider, err = c.MetricsProvider(); err != nil {
		return deps, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}
	if deps.DecisionMetrics, err = c.DecisionMetrics(); err != nil {
		return deps, fmt.Errorf("failed to get decision metrics for http server: %w", err)
	}
	deps.DemoHandler = c.DemoHandler()

	return deps, nil
}

func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
