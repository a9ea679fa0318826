package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-maze/internal/core"
	"github.com/vovakirdan/tui-maze/internal/platform/tui"
	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/storage"
)

const screenshotDir = "~/.maze/screenshots"

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the local terminal",
	Long: `Start a maze in this terminal. Your terminal must report mouse motion.

How to play:
  Click the green square to start the timer, then move the cursor
  through the maze to the red square. Touching a wall or leaving
  the board loses the run.

Controls:
  Enter      - Start (cursor must already be on the green square)
  R          - New maze
  Tab        - Scoreboard
  Ctrl+S     - Save a screenshot to ~/.maze/screenshots
  ?          - Toggle help
  Q/Ctrl+C   - Quit

Difficulty options:
  easy   - 8x8 maze
  normal - 16x16 maze
  hard   - 20x32 maze

Examples:
  maze play
  maze play --difficulty easy
  maze play --seed 42
  maze play --config ./my-maze.yaml`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The game owns the screen, so logs go to a file.
	logFile, err := openLogFile(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger, err := newLogger(logFile, cfg.Log.Level, "maze")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	defer startTelemetry(ctx, logger)()

	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	backend, board := openScores(ctx, cfg, logger)
	defer backend.Close()
	if backend.Name != cfg.Storage.Backend {
		fmt.Fprintf(os.Stderr, "Warning: %s store unavailable, times will not be saved (see %s)\n",
			cfg.Storage.Backend, cfg.Log.File)
	}

	rng, seed := newRand(flagSeed)
	logger.Info("starting game", "rows", cfg.Grid.Rows, "cols", cfg.Grid.Cols, "seed", seed, "store", backend.Name)

	opts := []session.Option{
		session.WithRand(rng),
		session.WithLogger(logger),
		session.WithPlayer(playerName()),
	}
	if sink := backend.RunSink(); sink != nil {
		opts = append(opts, session.WithRunSink(sink))
	}
	sess := session.New(ctx, cfg.SessionConfig(), board, opts...)

	shots, err := storage.ExpandHome(screenshotDir)
	if err != nil {
		shots = filepath.Join(os.TempDir(), "maze-screenshots")
	}

	return tui.Run(ctx, sess, tui.Options{
		Screen: core.RuntimeConfig{
			ScreenW: width,
			ScreenH: height,
			Seed:    seed,
		},
		History:       tui.HistoryOf(backend),
		Logger:        logger,
		ScreenshotDir: shots,
	})
}
