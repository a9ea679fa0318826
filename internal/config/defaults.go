package config

import (
	_ "embed"
)

//go:embed defaults/maze.yaml
var defaultMazeYAML []byte

// DefaultConfig returns the built-in configuration. It matches defaults/maze.yaml.
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Rows: 16,
			Cols: 16,
		},
		Tracker: TrackerConfig{
			CellSize:      25,
			WallThreshold: 2,
		},
		Timer: TimerConfig{
			TickIntervalMs: 10,
		},
		Leaderboard: LeaderboardConfig{
			Capacity: 5,
			Key:      "highScores",
		},
		Storage: StorageConfig{
			Backend:   "sqlite",
			DBPath:    "~/.maze/scores.db",
			FileDir:   "~/.maze/scores",
			RedisAddr: "localhost:6379",
		},
		Web: WebConfig{
			Addr:              ":8080",
			SessionTTLMinutes: 30,
			MaxSessions:       1000,
		},
		SSH: SSHConfig{
			Addr:               ":23234",
			HostKeyPath:        "~/.maze/host_key",
			IdleTimeoutMinutes: 30,
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.maze/maze.log",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultMazeYAML
}
