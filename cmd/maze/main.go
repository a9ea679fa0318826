// maze is a mouse-driven maze game for the terminal.
//
// Usage:
//
//	maze play                - Play in the local terminal
//	maze serve               - Start SSH server for remote play
//	maze web                 - Start the HTTP API
//	maze scores              - Show best times and run history
//	maze gen                 - Print a generated maze as ASCII
//	maze config              - Print the default configuration
//
// Global flags:
//
//	--config <path>      - Configuration YAML (default: search ~/.maze/configs, ./configs)
//	--difficulty <name>  - Preset: easy, normal, hard
//	--seed <value>       - RNG seed for reproducible mazes
//	--db <path>          - SQLite database path
//	--store <name>       - Leaderboard backend: sqlite, redis, file, memory
//	--redis-addr <addr>  - Redis address for the redis backend
//	--log-level <level>  - debug, info, warn, error
//	--otel               - Export traces over OTLP HTTP
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig     string
	flagDifficulty string
	flagSeed       int64
	flagDBPath     string
	flagStore      string
	flagRedisAddr  string
	flagLogLevel   string
	flagOTel       bool
)

func main() {
	// A missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "maze",
	Short: "Mouse Maze - guide the cursor through a maze without touching a wall",
	Long: `Mouse Maze is a terminal maze game played with the mouse.
Click the green square, then move the cursor to the red square
without touching any wall. The fastest times make the leaderboard.

Available commands:
  play     - Play in your terminal
  serve    - Start SSH server for remote play
  web      - Start the HTTP API
  scores   - View best times
  gen      - Print a maze as ASCII art
  config   - Print the default configuration

Examples:
  maze play
  maze play --difficulty easy
  maze serve --ssh :23234
  maze web --addr :8080
  maze scores --recent 20
  maze gen --rows 8 --cols 8 --seed 42 --solve`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	pf.StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	pf.Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	pf.StringVar(&flagDBPath, "db", "", "Path to scores database (default: ~/.maze/scores.db)")
	pf.StringVar(&flagStore, "store", "", "Leaderboard backend: sqlite, redis, file, memory")
	pf.StringVar(&flagRedisAddr, "redis-addr", "", "Redis address for the redis backend")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.BoolVar(&flagOTel, "otel", false, "Export traces over OTLP HTTP (configured by OTEL_* env)")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(configCmd)
}
