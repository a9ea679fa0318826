package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-maze/internal/platform/tui"
	"github.com/vovakirdan/tui-maze/internal/session"
)

var (
	flagRecent      int
	flagInteractive bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show best times",
	Long: `Display the leaderboard. With the sqlite backend the run
history is kept too, so win/loss stats and recent runs are shown.

Examples:
  maze scores
  maze scores --recent 20
  maze scores --store redis
  maze scores -i`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagRecent, "recent", 10, "Number of recent runs to list (sqlite only)")
	scoresCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse scores in a full-screen view")
}

func runScores(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Storage warnings are the only logs worth showing here.
	level := "warn"
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger, err := newLogger(os.Stderr, level, "")
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	backend, board := openScores(ctx, cfg, logger)
	defer backend.Close()

	if flagInteractive {
		width, height, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			return fmt.Errorf("interactive view needs a terminal: %w", err)
		}
		return tui.RunScoreboard(ctx, board, tui.HistoryOf(backend), width, height)
	}

	w := cmd.OutOrStdout()

	// Display best times
	fmt.Fprintf(w, "Best Times - %dx%d (%s)\n", cfg.Grid.Rows, cfg.Grid.Cols, backend.Name)
	fmt.Fprintln(w)

	times := board.Times()
	if len(times) == 0 {
		fmt.Fprintln(w, "No times recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Play 'maze play' to set the first one!")
	} else {
		// Print header
		fmt.Fprintf(w, "  %-4s  %s\n", "Rank", "Time")
		fmt.Fprintf(w, "  %-4s  %s\n", "----", "----")
		for i, t := range times {
			fmt.Fprintf(w, "  %-4d  %ss\n", i+1, session.FormatSeconds(t))
		}
	}

	if backend.Runs == nil {
		return nil
	}
	return printRuns(cmd, w, backend.Runs)
}

// printRuns prints the aggregate stats and the most recent runs.
func printRuns(cmd *cobra.Command, w io.Writer, history tui.RunHistory) error {
	ctx := cmd.Context()

	stats, err := history.Stats(ctx)
	if err != nil {
		return fmt.Errorf("retrieve stats: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Games: %d  Wins: %d  Losses: %d\n", stats.Games, stats.Wins, stats.Losses)
	if stats.Wins > 0 {
		fmt.Fprintf(w, "Fastest win: %ss  Average win: %ss\n",
			session.FormatSeconds(float64(stats.BestMs)/1000),
			session.FormatSeconds(stats.AvgWinMs/1000))
	}
	if !stats.LastPlayed.IsZero() {
		fmt.Fprintf(w, "Last played: %s\n", stats.LastPlayed.Format("2006-01-02 15:04"))
	}

	if flagRecent <= 0 || stats.Games == 0 {
		return nil
	}

	runs, err := history.RecentRuns(ctx, flagRecent)
	if err != nil {
		return fmt.Errorf("retrieve runs: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent Runs")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %-6s  %-8s  %-7s  %-12s  %s\n", "Result", "Time", "Size", "Player", "Date")
	fmt.Fprintf(w, "  %-6s  %-8s  %-7s  %-12s  %s\n", "------", "----", "----", "------", "----")
	for _, r := range runs {
		fmt.Fprintf(w, "  %-6s  %-8s  %-7s  %-12s  %s\n",
			r.Outcome,
			session.FormatElapsed(r.Elapsed())+"s",
			fmt.Sprintf("%dx%d", r.Rows, r.Cols),
			r.Player,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}
