package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-maze/internal/maze"
)

var (
	flagGenRows int
	flagGenCols int
	flagSolve   bool
	flagCheck   bool
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Print a generated maze as ASCII art",
	Long: `Generate a maze and print it. S marks the start, F the finish.

Examples:
  maze gen
  maze gen --rows 8 --cols 12
  maze gen --seed 42 --solve    # Mark the path from S to F with dots
  maze gen --seed 42 --check    # Verify the maze is perfect`,
	Args: cobra.NoArgs,
	RunE: runGen,
}

func init() {
	genCmd.Flags().IntVar(&flagGenRows, "rows", 0, "Rows (default from config)")
	genCmd.Flags().IntVar(&flagGenCols, "cols", 0, "Columns (default from config)")
	genCmd.Flags().BoolVar(&flagSolve, "solve", false, "Mark the solution path")
	genCmd.Flags().BoolVar(&flagCheck, "check", false, "Validate the maze and report the result")
}

func runGen(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagGenRows > 0 {
		cfg.Grid.Rows = flagGenRows
	}
	if flagGenCols > 0 {
		cfg.Grid.Cols = flagGenCols
	}

	logger, err := newLogger(os.Stderr, cfg.Log.Level, "maze-gen")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	defer startTelemetry(ctx, logger)()

	rng, seed := newRand(flagSeed)
	g := maze.New(ctx, cfg.Grid.Rows, cfg.Grid.Cols, rng)
	logger.Debug("maze generated", "rows", g.Rows, "cols", g.Cols, "seed", seed)

	var path []maze.Position
	if flagSolve {
		path = maze.Solve(g)
	}

	w := cmd.OutOrStdout()
	fmt.Fprint(w, g.Render(path))
	fmt.Fprintf(w, "seed: %d\n", seed)
	if flagSolve {
		fmt.Fprintf(w, "path: %d cells\n", len(path))
	}

	if flagCheck {
		if err := maze.Validate(g); err != nil {
			return fmt.Errorf("invalid maze: %w", err)
		}
		fmt.Fprintln(w, "check: ok")
	}
	return nil
}
