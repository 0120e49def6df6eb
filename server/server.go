package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/logger"
	"github.com/kbukum/errdispatch/observability"
	"github.com/kbukum/errdispatch/server/middleware"
)

// Server is an HTTP server backed by Gin. Errors raised by Gin views and by
// plain handlers mounted with Handle go through the same Dispatcher.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	handler    http.Handler
	dispatcher *dispatch.Dispatcher
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server whose Gin engine dispatches errors with d. The
// middleware stack (recovery, request id, tracing, request logging) wraps
// every route.
func New(cfg Config, log *logger.Logger, d *dispatch.Dispatcher) *Server {
	if log.GetLogger().GetLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	log = log.WithComponent("server")

	engine := gin.New()
	engine.Use(d.Gin())

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	handler := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(otel.GetTextMapPropagator()),
		middleware.RequestLogger(log),
	)(mux)

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          seconds(cfg.IdleTimeout),
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      h2c.NewHandler(handler, h2s),
			ReadTimeout:  seconds(cfg.ReadTimeout),
			WriteTimeout: seconds(cfg.WriteTimeout),
			IdleTimeout:  seconds(cfg.IdleTimeout),
		},
		engine:     engine,
		mux:        mux,
		handler:    handler,
		dispatcher: d,
		config:     cfg,
		log:        log,
	}
}

// GinEngine returns the Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler returns the root handler with the middleware stack applied.
func (s *Server) Handler() http.Handler { return s.handler }

// Handle mounts a view at pattern on the root mux. Its errors are dispatched.
func (s *Server) Handle(pattern string, view dispatch.HandlerFunc) {
	s.Mount(pattern, s.dispatcher.Handle(view))
}

// Mount mounts an http.Handler at pattern on the root mux, alongside Gin.
func (s *Server) Mount(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("handler mounted", logger.Fields("pattern", pattern))
}

// RegisterHealth registers GET /health reporting the aggregated status of
// checkers. A down service answers 503.
func (s *Server) RegisterHealth(service, version string, checkers ...observability.HealthChecker) {
	s.engine.GET("/health", func(c *gin.Context) {
		health := observability.CheckAll(c.Request.Context(), service, version, checkers...)
		status := http.StatusOK
		if health.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	})
}

// Start freezes the handler registry, binds the port and serves in a
// goroutine. It returns once the listener is bound.
func (s *Server) Start(ctx context.Context) error {
	s.dispatcher.Registry().Freeze()

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields(
		"addr", listener.Addr().String(),
		"handlers", s.dispatcher.Registry().Len(),
	))
	return nil
}

// Stop gracefully shuts down the server within the configured timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")

	timeout := seconds(s.config.ShutdownTimeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
