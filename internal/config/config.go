// Package config provides YAML-based configuration loading for the maze
// game, its servers and its storage backends.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/storage"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// Config contains all configuration for the maze game.
type Config struct {
	Grid        GridConfig        `yaml:"grid"`
	Tracker     TrackerConfig     `yaml:"tracker"`
	Timer       TimerConfig       `yaml:"timer"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Storage     StorageConfig     `yaml:"storage"`
	Web         WebConfig         `yaml:"web"`
	SSH         SSHConfig         `yaml:"ssh"`
	Log         LogConfig         `yaml:"log"`
}

// GridConfig defines the maze dimensions in cells.
type GridConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// TrackerConfig defines the pointer geometry.
type TrackerConfig struct {
	CellSize      float64 `yaml:"cell_size"`
	WallThreshold float64 `yaml:"wall_threshold"`
}

// TimerConfig defines the display refresh period.
type TimerConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms"`
}

// LeaderboardConfig defines the best-times list.
type LeaderboardConfig struct {
	Capacity int    `yaml:"capacity"`
	Key      string `yaml:"key"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend       string `yaml:"backend"`
	DBPath        string `yaml:"db_path"`
	FileDir       string `yaml:"file_dir"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// WebConfig defines the HTTP API server.
type WebConfig struct {
	Addr              string `yaml:"addr"`
	SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	MaxSessions       int    `yaml:"max_sessions"`
}

// SSHConfig defines the SSH server.
type SSHConfig struct {
	Addr               string `yaml:"addr"`
	HostKeyPath        string `yaml:"host_key_path"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
}

// LogConfig defines logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // used by the terminal game only
}

// Validate rejects values the game cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Grid.Rows <= 0 || c.Grid.Cols <= 0:
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalid, c.Grid.Rows, c.Grid.Cols)
	case c.Tracker.CellSize <= 0:
		return fmt.Errorf("%w: cell_size must be positive, got %v", ErrInvalid, c.Tracker.CellSize)
	case c.Tracker.WallThreshold <= 0 || c.Tracker.WallThreshold*2 >= c.Tracker.CellSize:
		return fmt.Errorf("%w: wall_threshold must be in (0, cell_size/2), got %v", ErrInvalid, c.Tracker.WallThreshold)
	case c.Timer.TickIntervalMs <= 0:
		return fmt.Errorf("%w: tick_interval_ms must be positive, got %d", ErrInvalid, c.Timer.TickIntervalMs)
	case c.Leaderboard.Capacity <= 0:
		return fmt.Errorf("%w: leaderboard capacity must be positive, got %d", ErrInvalid, c.Leaderboard.Capacity)
	case c.Leaderboard.Key == "":
		return fmt.Errorf("%w: leaderboard key is empty", ErrInvalid)
	case c.Web.SessionTTLMinutes <= 0 || c.Web.MaxSessions <= 0:
		return fmt.Errorf("%w: web session limits must be positive", ErrInvalid)
	}

	switch c.Storage.Backend {
	case storage.BackendSQLite, storage.BackendRedis, storage.BackendFile, storage.BackendMemory:
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalid, c.Storage.Backend)
	}
	return nil
}

// Geometry returns the tracker geometry.
func (c Config) Geometry() tracker.Geometry {
	return tracker.Geometry{
		CellSize:  c.Tracker.CellSize,
		Threshold: c.Tracker.WallThreshold,
	}
}

// TickInterval returns the display refresh period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Timer.TickIntervalMs) * time.Millisecond
}

// SessionConfig returns the per-game constants.
func (c Config) SessionConfig() session.Config {
	return session.Config{
		Rows:         c.Grid.Rows,
		Cols:         c.Grid.Cols,
		Geometry:     c.Geometry(),
		TickInterval: c.TickInterval(),
	}
}

// NewLeaderboard creates the leaderboard over store.
func (c Config) NewLeaderboard(store leaderboard.Store) *leaderboard.Leaderboard {
	return leaderboard.New(store, c.Leaderboard.Key, c.Leaderboard.Capacity)
}

// StorageOptions returns the backend selection.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:       c.Storage.Backend,
		DBPath:        c.Storage.DBPath,
		FileDir:       c.Storage.FileDir,
		RedisAddr:     c.Storage.RedisAddr,
		RedisPassword: c.Storage.RedisPassword,
		RedisDB:       c.Storage.RedisDB,
	}
}

// SessionTTL returns how long an idle web session is kept.
func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.Web.SessionTTLMinutes) * time.Minute
}

// SSHIdleTimeout returns the SSH idle timeout.
func (c Config) SSHIdleTimeout() time.Duration {
	return time.Duration(c.SSH.IdleTimeoutMinutes) * time.Minute
}
