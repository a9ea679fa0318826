package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-maze/internal/platform/web"
)

var (
	flagWebAddr     string
	flagMaxSessions int
	flagSessionTTL  int
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the HTTP API",
	Long: `Start a JSON API that lets browser or bot clients play.

A client creates a session, receives the maze walls, starts the run
and streams pointer positions in board units. The server decides
collisions and wins and keeps the shared leaderboard.

Routes (under /api/v1):
  POST   /sessions              - Create a session
  GET    /sessions/:id          - Session state with grid
  POST   /sessions/:id/start    - Start the run
  POST   /sessions/:id/move     - Send a pointer position {"x":..,"y":..}
  POST   /sessions/:id/restart  - New maze
  DELETE /sessions/:id          - Drop the session
  GET    /leaderboard           - Best times
  GET    /healthz               - Liveness

Examples:
  maze web
  maze web --addr :9090 --max-sessions 200
  maze web --store redis --redis-addr localhost:6379 --otel`,
	Args: cobra.NoArgs,
	RunE: runWeb,
}

func init() {
	webCmd.Flags().StringVar(&flagWebAddr, "addr", "", "HTTP listen address (default from config)")
	webCmd.Flags().IntVar(&flagMaxSessions, "max-sessions", 0, "Maximum live sessions (default from config)")
	webCmd.Flags().IntVar(&flagSessionTTL, "session-ttl", 0, "Minutes before an idle session is dropped (default from config)")
}

func runWeb(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagWebAddr != "" {
		cfg.Web.Addr = flagWebAddr
	}
	if flagMaxSessions > 0 {
		cfg.Web.MaxSessions = flagMaxSessions
	}
	if flagSessionTTL > 0 {
		cfg.Web.SessionTTLMinutes = flagSessionTTL
	}

	logger, err := newLogger(os.Stderr, cfg.Log.Level, "maze-web")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	defer startTelemetry(ctx, logger)()

	backend, board := openScores(ctx, cfg, logger)
	defer backend.Close()

	hub := web.NewHub(web.HubConfig{
		Session:     cfg.SessionConfig(),
		Leaderboard: board,
		Runs:        backend.RunSink(),
		TTL:         cfg.SessionTTL(),
		MaxSessions: cfg.Web.MaxSessions,
		Logger:      logger,
	})

	server := web.NewServer(web.ServerConfig{
		Addr:   cfg.Web.Addr,
		Hub:    hub,
		Logger: logger,
	})

	fmt.Printf("Serving maze API on %s%s\n", cfg.Web.Addr, web.BaseURL)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
