package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/vovakirdan/tui-maze/internal/telemetry"
)

// BaseURL prefixes every API route.
const BaseURL = "/api/v1"

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Addr   string       // Address to listen on
	Hub    *Hub
	Logger *log.Logger  // nil logs to stderr
	Tracer trace.Tracer // nil uses the global provider
	Mode   string       // gin mode; empty means release
}

// Server serves the session API.
type Server struct {
	addr   string
	hub    *Hub
	engine *gin.Engine
	http   *http.Server
	logger *log.Logger
}

// NewServer creates the gin engine and registers all routes.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "maze-web",
		})
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer("web")
	}

	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), tracing(tracer))

	api := engine.Group(BaseURL)
	NewSessionController(cfg.Hub, tracer).Register(api)

	return &Server{
		addr:   cfg.Addr,
		hub:    cfg.Hub,
		engine: engine,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is done, a termination signal arrives or
// the listener fails. Idle sessions are evicted in the background.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting HTTP server", "address", s.addr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.hub.Run(ctx)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return fmt.Errorf("http server: %w", err)
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.http.Shutdown(ctx)
}
