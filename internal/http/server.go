// Package http provides the local agent's HTTP servers: the API server and the
// Prometheus metrics server.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/piivault/internal/auth/http"
	authService "github.com/allisson/piivault/internal/auth/service"
	"github.com/allisson/piivault/internal/config"
	"github.com/allisson/piivault/internal/metrics"
	vaultHTTP "github.com/allisson/piivault/internal/vault/http"
	vaultUseCase "github.com/allisson/piivault/internal/vault/usecase"
)

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the agent API server.
type Server struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
	vault  vaultUseCase.VaultUseCase
	store  Pinger
}

// NewServer creates the API server. SetupRouter must be called before Start.
func NewServer(
	vault vaultUseCase.VaultUseCase,
	store Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		logger: logger,
		vault:  vault,
		store:  store,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine and registers every route.
//
// /health and /ready are open. Everything under /v1 requires the agent secret when
// cfg.AgentSecretHash is set and is rate limited per client IP when enabled. The
// rate limiter's background cleanup stops when ctx is done.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	vaultHandler *vaultHTTP.VaultHandler,
	detokenizeHandler *vaultHTTP.DetokenizeHandler,
	secretService authService.SecretService,
	metricsProvider *metrics.Provider,
	metricsNamespace string,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	if cfg.AgentSecretHash != "" {
		v1.Use(authHTTP.AgentAuthMiddleware(secretService, cfg.AgentSecretHash, s.logger))
	} else {
		s.logger.Warn("AGENT_SECRET_HASH is empty: the agent API is unauthenticated")
	}

	vault := v1.Group("/vault")
	{
		vault.POST("/session", vaultHandler.OpenSessionHandler)
		vault.DELETE("/session", vaultHandler.CloseSessionHandler)
		vault.POST("/tokens", vaultHandler.StoreTokensHandler)
		vault.GET("/tokens/:token", vaultHandler.TokenExistsHandler)
		vault.GET("/stats", vaultHandler.StatsHandler)
	}

	v1.POST("/detokenize", detokenizeHandler.DetokenizeHandler)
	v1.POST("/detokenize/stream", detokenizeHandler.StreamHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured: call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready only when the vault has an open session and the
// record store answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	components := gin.H{}
	ready := true

	if s.vault != nil && s.vault.IsReady() {
		components["vault"] = "ok"
	} else {
		components["vault"] = "not_ready"
		ready = false
	}

	if s.store != nil && s.store.Ping(ctx) == nil {
		components["storage"] = "ok"
	} else {
		components["storage"] = "error"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
