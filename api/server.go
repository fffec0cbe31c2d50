package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swapforge/swapforge/x/amm/keeper"
)

// Server exposes the engine over HTTP: pool queries, quotes and route
// discovery. All endpoints are read-only; trades settle through the keeper
// API, not through this surface.
type Server struct {
	router *gin.Engine
	keeper *keeper.Keeper
	logger log.Logger
	config *Config
	http   *http.Server
}

// Config holds server configuration
type Config struct {
	Host            string
	Port            string
	CORSOrigins     []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            "8080",
		CORSOrigins:     []string{"http://localhost:3000"},
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// NewServer creates a new API server around an engine keeper.
func NewServer(k *keeper.Keeper, logger log.Logger, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		router: router,
		keeper: k,
		logger: logger.With("component", "api"),
		config: config,
	}

	router.Use(gin.Recovery())
	router.Use(s.RequestIDMiddleware())
	router.Use(s.CORSMiddleware())
	router.Use(s.LoggingMiddleware())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	{
		v1.GET("/pools", s.handleGetPools)
		v1.GET("/pools/:id", s.handleGetPool)
		v1.GET("/pools/:id/prices", s.handleGetCumulativePrices)
		v1.GET("/quote/out", s.handleQuoteOut)
		v1.GET("/quote/in", s.handleQuoteIn)
		v1.GET("/route", s.handleBestRoute)
	}
}

// Router exposes the underlying handler, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until ctx is cancelled, then drains in-flight
// requests within the configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.logger.Info("api server shutting down")
	return s.http.Shutdown(shutdownCtx)
}
