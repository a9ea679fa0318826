package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the search directories.
const FileName = "maze.yaml"

// Load loads the maze configuration, applies MAZE_* environment overrides
// and validates the result.
// Search order: customPath -> ~/.maze/configs/maze.yaml -> ./configs/maze.yaml -> embedded default
// Files are decoded over the defaults, so a partial file only overrides what it names.
func Load(customPath string) (Config, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, error) {
	cfg := DefaultConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to read %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: failed to parse %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory, then local configs directory
	for _, path := range []string{userConfigPath(FileName), filepath.Join("configs", FileName)} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := DefaultConfig()
		if err := yaml.Unmarshal(data, &candidate); err == nil {
			return candidate, nil
		}
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultMazeYAML, &cfg); err != nil {
		return DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".maze", "configs", filename)
}

// ApplyEnv overrides cfg from MAZE_* variables looked up with lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"MAZE_ROWS", &cfg.Grid.Rows},
		{"MAZE_COLS", &cfg.Grid.Cols},
		{"MAZE_TICK_MS", &cfg.Timer.TickIntervalMs},
		{"MAZE_LEADERBOARD_CAPACITY", &cfg.Leaderboard.Capacity},
		{"MAZE_REDIS_DB", &cfg.Storage.RedisDB},
		{"MAZE_WEB_MAX_SESSIONS", &cfg.Web.MaxSessions},
	}
	for _, v := range ints {
		raw, ok := lookup(v.name)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", v.name, err)
		}
		*v.dst = n
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"MAZE_CELL_SIZE", &cfg.Tracker.CellSize},
		{"MAZE_WALL_THRESHOLD", &cfg.Tracker.WallThreshold},
	}
	for _, v := range floats {
		raw, ok := lookup(v.name)
		if !ok || raw == "" {
			continue
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", v.name, err)
		}
		*v.dst = f
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"MAZE_LEADERBOARD_KEY", &cfg.Leaderboard.Key},
		{"MAZE_STORE", &cfg.Storage.Backend},
		{"MAZE_DB", &cfg.Storage.DBPath},
		{"MAZE_FILE_DIR", &cfg.Storage.FileDir},
		{"MAZE_REDIS_ADDR", &cfg.Storage.RedisAddr},
		{"MAZE_REDIS_PASSWORD", &cfg.Storage.RedisPassword},
		{"MAZE_WEB_ADDR", &cfg.Web.Addr},
		{"MAZE_SSH_ADDR", &cfg.SSH.Addr},
		{"MAZE_SSH_HOST_KEY", &cfg.SSH.HostKeyPath},
		{"MAZE_LOG_LEVEL", &cfg.Log.Level},
		{"MAZE_LOG_FILE", &cfg.Log.File},
	}
	for _, v := range strs {
		if raw, ok := lookup(v.name); ok && raw != "" {
			*v.dst = raw
		}
	}
	return nil
}
