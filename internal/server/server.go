// Package server exposes the matching engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/presta-matcher/internal/logger"
	"github.com/spigell/presta-matcher/internal/metrics"
	"github.com/spigell/presta-matcher/internal/search"
	"github.com/spigell/presta-matcher/internal/server/middleware"
)

const (
	SearchRoute  = "/api/matching/search"
	AnalyzeRoute = "/api/matching/analyze"
	HealthRoute  = "/healthz"
	MetricsRoute = "/metrics"
)

// Config holds listener and limiter settings.
type Config struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read-timeout"`
	WriteTimeout      time.Duration `mapstructure:"write-timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle-timeout"`
	RequestsPerMinute int           `mapstructure:"requests-per-minute"`
	Burst             int           `mapstructure:"burst"`
}

func DefaultConfig() Config {
	return Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Searcher is satisfied by *search.Service.
type Searcher interface {
	Search(ctx context.Context, req search.Request) *search.Response
}

type Server struct {
	cfg        Config
	router     *gin.Engine
	searcher   Searcher
	httpServer *http.Server
	logger     *zap.Logger

	limiter   *middleware.IPRateLimiter
	sweepCtx  context.Context
	stopSweep context.CancelFunc
}

// New builds the router. Rate limiting is enabled when RequestsPerMinute is
// positive.
func New(cfg Config, searcher Searcher, log *zap.Logger) (*Server, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	log = logger.OrNop(log)

	metrics.Register()

	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Recovery(log, search.FailureMessage))

	s := &Server{
		cfg:      cfg,
		router:   router,
		searcher: searcher,
		logger:   log,
	}
	s.sweepCtx, s.stopSweep = context.WithCancel(context.Background())

	if cfg.RequestsPerMinute > 0 {
		s.limiter = middleware.NewIPRateLimiter(cfg.RequestsPerMinute, cfg.Burst)
		router.Use(s.limiter.Middleware())
	}
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET(MetricsRoute, gin.WrapH(metrics.Handler()))
	s.router.GET(HealthRoute, s.healthCheck)

	api := s.router.Group("/api/matching")
	api.POST("/search", s.handleSearch)
	api.GET("/analyze", s.handleAnalyze)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:           s.cfg.Addr(),
		Handler:        s.router,
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	if s.limiter != nil {
		go s.limiter.Run(s.sweepCtx, middleware.DefaultSweepInterval)
	}
	defer s.stopSweep()

	s.logger.Info("starting http server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown stops the limiter sweeper and waits for in-flight requests until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopSweep()
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down http server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
