package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-maze/internal/config"
	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/storage"
	"github.com/vovakirdan/tui-maze/internal/telemetry"
)

// loadConfig loads the configuration and applies the difficulty preset and
// the global flag overrides on top of it.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	if flagDifficulty != "" {
		preset, err := config.ParsePreset(flagDifficulty)
		if err != nil {
			return cfg, err
		}
		config.ApplyPreset(&cfg, preset)
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagStore != "" {
		cfg.Storage.Backend = flagStore
	}
	if flagRedisAddr != "" {
		cfg.Storage.RedisAddr = flagRedisAddr
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	return cfg, cfg.Validate()
}

// newLogger creates a logger writing to w at the configured level.
func newLogger(w io.Writer, level, prefix string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if level != "" {
		var err error
		if lvl, err = log.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	}), nil
}

// openLogFile opens the game log for appending. The terminal game cannot log
// to stderr while it owns the screen.
func openLogFile(path string) (*os.File, error) {
	path, err := storage.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// startTelemetry installs the OTLP exporter when --otel is set.
// The returned function flushes pending spans.
func startTelemetry(ctx context.Context, logger *log.Logger) func() {
	if !flagOTel {
		return func() {}
	}

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Warn("telemetry disabled", "error", err)
		return func() {}
	}
	logger.Debug("telemetry enabled")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}
}

// openScores opens the configured backend and loads the leaderboard from it.
// Failures fall back to memory so the game always starts.
func openScores(ctx context.Context, cfg config.Config, logger *log.Logger) (*storage.Backend, *leaderboard.Leaderboard) {
	backend := storage.OpenOrFallback(ctx, cfg.StorageOptions(), logger)

	board := cfg.NewLeaderboard(backend.Store)
	if err := board.Load(ctx); err != nil {
		logger.Warn("cannot load leaderboard", "backend", backend.Name, "error", err)
	}
	logger.Debug("leaderboard ready", "backend", backend.Name, "key", board.Key(), "times", len(board.Times()))

	return backend, board
}

// newRand returns a random source for seed, or a time-based one for 0,
// along with the seed actually used.
func newRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// playerName returns the local user name for recorded runs.
func playerName() string {
	for _, env := range []string{"USER", "USERNAME"} {
		if name := strings.TrimSpace(os.Getenv(env)); name != "" {
			return name
		}
	}
	return "player"
}
