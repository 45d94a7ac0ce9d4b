package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/haven-shield/insight-engine/internal/cache"
	"github.com/haven-shield/insight-engine/internal/config"
	"github.com/haven-shield/insight-engine/internal/database"
	"github.com/haven-shield/insight-engine/internal/handlers"
	"github.com/haven-shield/insight-engine/internal/middleware"
	"github.com/haven-shield/insight-engine/internal/realtime"
)

// Server owns the HTTP surface: the API, health probes, metrics, and the
// realtime websocket endpoint.
type Server struct {
	cfg       config.ServerConfig
	logger    *zap.Logger
	http      *http.Server
	repo      *database.Repository
	snapshots *cache.SnapshotCache
}

// New builds the gin router and wraps it in an http.Server.
func New(cfg *config.Config, handler *handlers.Handler, hub *realtime.Hub, repo *database.Repository, snapshots *cache.SnapshotCache, logger *zap.Logger) *Server {
	if cfg.Environment == "production" && !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logging(logger))
	router.Use(middleware.Metrics())

	s := &Server{
		cfg:       cfg.Server,
		logger:    logger,
		repo:      repo,
		snapshots: snapshots,
	}

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", hub.HandleWebSocket)

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Auth))
	handler.RegisterRoutes(api)

	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "insight-engine",
		"timestamp": time.Now().UTC(),
	})
}

// ready checks the external dependencies the API needs to serve.
func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := s.repo.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}
	if err := s.snapshots.Ping(ctx); err != nil {
		checks["cache"] = err.Error()
		healthy = false
	} else {
		checks["cache"] = "ok"
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": healthy, "checks": checks})
}
