package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/objmgr/internal/infrastructure/tracing"
)

const shutdownTimeout = 5 * time.Second

// Server serves the diagnostics endpoints of a running process.
type Server struct {
	router  *gin.Engine
	http    *http.Server
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// Options wires the server's collaborators. Tracer may be nil.
type Options struct {
	Addr     string
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
	Gatherer prometheus.Gatherer
	Tracer   *tracing.Tracer
}

// NewServer creates a diagnostics server instance.
func NewServer(opts Options) (*Server, error) {
	if opts.Addr == "" {
		return nil, errors.New("server: listen address required")
	}
	if opts.Gatherer == nil {
		return nil, errors.New("server: prometheus gatherer required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.Tracer != nil {
		router.Use(tracing.HTTPMiddleware(opts.Tracer))
	}
	if opts.Metrics != nil {
		router.Use(monitoring.Middleware(opts.Metrics))
	}
	monitoring.RegisterRoutes(router, opts.Metrics, opts.Gatherer)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		router:  router,
		logger:  logger,
		metrics: opts.Metrics,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("diagnostics server listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("diagnostics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("diagnostics server shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("diagnostics server shutdown: %w", err)
	}
	return nil
}
