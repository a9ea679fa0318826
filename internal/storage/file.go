package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileStore keeps one JSON file per key in a directory.
// Writes go to a temp file that is renamed over the target.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// OpenFile creates dir if needed and returns a store rooted there.
func OpenFile(dir string) (*FileStore, error) {
	dir, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the files.
func (f *FileStore) Dir() string {
	return f.dir
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

// Load implements leaderboard.Store.
func (f *FileStore) Load(_ context.Context, key string) ([]float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load(key)
}

func (f *FileStore) load(key string) ([]float64, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}

	var times []float64
	if err := json.Unmarshal(data, &times); err != nil {
		return nil, false, fmt.Errorf("storage: corrupt value in %s: %w", f.path(key), err)
	}
	return times, true, nil
}

// Save implements leaderboard.Store.
func (f *FileStore) Save(_ context.Context, key string, times []float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(key, times)
}

func (f *FileStore) save(key string, times []float64) error {
	if times == nil {
		times = []float64{}
	}
	data, err := json.MarshalIndent(times, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: cannot encode times: %w", err)
	}

	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("storage: cannot replace %s: %w", path, err)
	}
	return nil
}

// Update implements leaderboard.Updater for writers within this process.
// A corrupt file is treated as empty and overwritten.
func (f *FileStore) Update(_ context.Context, key string, fn func([]float64) []float64) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, _, err := f.load(key)
	if err != nil {
		current = nil
	}
	next := fn(current)
	if err := f.save(key, next); err != nil {
		return nil, err
	}
	return next, nil
}

var (
	_ leaderboard.Store   = (*FileStore)(nil)
	_ leaderboard.Updater = (*FileStore)(nil)
)
