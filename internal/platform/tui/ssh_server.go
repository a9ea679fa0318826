package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-maze/internal/core"
	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/storage"
)

const defaultHostKey = "~/.maze/host_key"

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	Address     string        // host:port, e.g. ":23234"
	HostKeyPath string        // generated on first start if missing; empty means ~/.maze/host_key
	IdleTimeout time.Duration // idle connections are closed after this

	// Session configures the maze every connection gets.
	Session session.Config

	// Leaderboard is shared by all connections. Nil means in-memory.
	Leaderboard *leaderboard.Leaderboard

	// Runs records finished games; History feeds the scoreboard. Both optional.
	Runs    session.RunSink
	History RunHistory
}

// DefaultSSHServerConfig returns the stock port and timeout with the default maze.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Session:     session.DefaultConfig(),
	}
}

// SSHServer serves one maze per SSH connection over Wish.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	logger  *log.Logger
	players atomic.Int64
}

// NewSSHServer prepares the host key and the middleware chain.
// A nil logger logs to stderr.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "maze-ssh",
		})
	}
	if cfg.Leaderboard == nil {
		cfg.Leaderboard = leaderboard.New(nil, "", 0)
	}
	if cfg.HostKeyPath == "" {
		cfg.HostKeyPath = defaultHostKey
	}

	hostKey, err := storage.ExpandHome(cfg.HostKeyPath)
	if err != nil {
		return nil, fmt.Errorf("tui: host key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(hostKey), 0o700); err != nil {
		return nil, fmt.Errorf("tui: cannot create host key directory: %w", err)
	}
	cfg.HostKeyPath = hostKey

	srv := &SSHServer{config: cfg, logger: logger}

	// Middleware runs last to first: connections without a terminal are
	// turned away before a session is built for them.
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKey),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			activeterm.Middleware(),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tui: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler builds a fresh GameSession and model for a connection.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sshSession.Pty()

	player := sshSession.User()
	logger := s.logger.With("session", uuid.NewString(), "player", player)

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithPlayer(player),
	}
	if s.config.Runs != nil {
		opts = append(opts, session.WithRunSink(s.config.Runs))
	}

	ctx := sshSession.Context()
	sess := session.New(ctx, s.config.Session, s.config.Leaderboard, opts...)

	model := NewModel(ctx, sess, Options{
		Screen:  core.RuntimeConfig{ScreenW: pty.Window.Width, ScreenH: pty.Window.Height},
		History: s.config.History,
		Logger:  logger,
	})

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	}
}

// loggingMiddleware logs connects and disconnects with the number of
// players online.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		remote := sshSession.RemoteAddr().String()

		s.logger.Info("player connected",
			"user", sshSession.User(),
			"remote", remote,
			"online", s.players.Add(1),
		)
		defer func() {
			s.logger.Info("player left",
				"user", sshSession.User(),
				"remote", remote,
				"online", s.players.Add(-1),
				"duration", time.Since(start).Round(time.Second),
			)
		}()

		next(sshSession)
	}
}

// Online returns the number of connected players.
func (s *SSHServer) Online() int {
	return int(s.players.Load())
}

// ListenAndServe serves until ctx is done, a termination signal arrives or
// the listener fails.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "host_key", s.config.HostKeyPath)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-sigs:
	case <-ctx.Done():
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return fmt.Errorf("tui: ssh server: %w", err)
	}

	s.logger.Info("shutting down", "online", s.Online())
	return s.Shutdown()
}

// Shutdown stops accepting connections and waits up to ten seconds for
// players to leave.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// Addr returns the configured listen address.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
