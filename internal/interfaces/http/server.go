// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fitness-inventory/internal/config"
	"github.com/your-org/fitness-inventory/internal/domain/analytics"
	"github.com/your-org/fitness-inventory/internal/domain/inventory"
	"github.com/your-org/fitness-inventory/internal/domain/product"
	redisinfra "github.com/your-org/fitness-inventory/internal/infrastructure/database/redis"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/handlers"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/middleware"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/response"
	"github.com/your-org/fitness-inventory/internal/interfaces/http/routes"
	"github.com/your-org/fitness-inventory/internal/pkg/auth"
	"github.com/your-org/fitness-inventory/internal/pkg/pdf"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	logger      *logrus.Logger
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redisinfra.Client
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance with routes registered
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redisinfra.Client, logger *logrus.Logger) *Server {
	s := &Server{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		startedAt:   time.Now(),
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.gin = gin.New()
	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		logger.WithError(err).Warn("Invalid trusted proxies, trusting none")
		_ = s.gin.SetTrustedProxies(nil)
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// Handler exposes the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": fmt.Sprintf("http://localhost:%s/api/v1", s.config.Server.Port),
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Logger(s.logger))
	s.gin.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ContextRequestID),
			"panic":      recovered,
		}).Error("Recovered from panic")
		response.Abort(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
	}))
	s.gin.Use(otelgin.Middleware(s.config.Telemetry.ServiceName))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RateLimit(s.config.Security.RateLimitPerMinute, s.redisClient.GetClient(), s.logger))
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes wires services to handlers and registers all routes
func (s *Server) setupRoutes() {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	inventoryService := inventory.NewService(s.db, s.config, s.logger)
	productService := product.NewService(s.db, s.config)
	productService.SetStockHooks(inventoryService)

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, routes.Dependencies{
		InventoryHandler: handlers.NewInventoryHandler(inventoryService, pdf.NewService(s.config), s.logger),
		ProductHandler:   handlers.NewProductHandler(productService, s.logger),
		AnalyticsHandler: handlers.NewAnalyticsHandler(analytics.NewService(s.db, s.config), s.logger),
		JWTManager:       auth.NewJWTManager(s.config),
		Idempotency:      redisinfra.NewIdempotencyStore(s.redisClient, s.config.Inventory.IdempotencyTTL),
		Logger:           s.logger,
	})
}

// healthCheck reports liveness plus the state of the database and Redis
func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{"database": "ok", "redis": "ok"}
	healthy := true

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		healthy = false
	}
	if err := s.redisClient.Health(ctx); err != nil {
		checks["redis"] = "unreachable"
		healthy = false
	}

	status := http.StatusOK
	state := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":      state,
		"checks":      checks,
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck reports whether the database can serve requests.
// Redis is optional for readiness since rate limiting and idempotency degrade.
func (s *Server) readinessCheck(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "not_ready",
			"timestamp": time.Now().UTC(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
