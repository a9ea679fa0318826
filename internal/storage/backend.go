package storage

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/session"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	DBPath        string
	FileDir       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Backend is an opened leaderboard store plus, for SQLite, the run history.
type Backend struct {
	Name  string
	Store leaderboard.Store
	Runs  *Store // nil unless Name is sqlite

	close func() error
}

// RunSink returns the run recorder, or nil if the backend keeps no history.
func (b *Backend) RunSink() session.RunSink {
	if b.Runs == nil {
		return nil
	}
	return b.Runs
}

// Close releases the backend's resources.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the configured backend. If it cannot be opened the
// returned backend is an in-memory store and the error is returned for
// logging; the game keeps working either way.
func OpenBackend(ctx context.Context, opts Options) (*Backend, error) {
	switch opts.Backend {
	case BackendSQLite, "":
		s, err := Open(opts.DBPath)
		if err != nil {
			return memoryBackend(), err
		}
		return &Backend{Name: BackendSQLite, Store: s, Runs: s, close: s.Close}, nil

	case BackendRedis:
		r, err := OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			return memoryBackend(), err
		}
		return &Backend{Name: BackendRedis, Store: r, close: r.Close}, nil

	case BackendFile:
		f, err := OpenFile(opts.FileDir)
		if err != nil {
			return memoryBackend(), err
		}
		return &Backend{Name: BackendFile, Store: f}, nil

	case BackendMemory:
		return memoryBackend(), nil

	default:
		return memoryBackend(), fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
}

// OpenOrFallback is OpenBackend with the failure logged as a warning.
func OpenOrFallback(ctx context.Context, opts Options, logger *log.Logger) *Backend {
	b, err := OpenBackend(ctx, opts)
	if err != nil {
		logger.Warn("storage unavailable, scores will not persist", "backend", opts.Backend, "error", err)
	}
	return b
}

func memoryBackend() *Backend {
	return &Backend{Name: BackendMemory, Store: leaderboard.NewMemoryStore()}
}
