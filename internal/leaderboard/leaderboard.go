// Package leaderboard keeps the capped, ascending list of best completion
// times on top of an abstract key-value store.
package leaderboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Default leaderboard settings.
const (
	DefaultCapacity = 5
	DefaultKey      = "highScores"
)

// Store is the persistence collaborator: a key-value store of number sequences.
type Store interface {
	// Load returns the stored sequence for key.
	// ok is false when nothing is stored under key.
	Load(ctx context.Context, key string) (times []float64, ok bool, err error)

	// Save replaces the sequence stored under key.
	Save(ctx context.Context, key string, times []float64) error
}

// Updater is implemented by stores shared between processes or sessions.
// Update applies fn to the current value atomically and stores the result.
type Updater interface {
	Update(ctx context.Context, key string, fn func(times []float64) []float64) ([]float64, error)
}

// Insert appends t to times, sorts ascending and keeps the capacity smallest.
// The input slice is not modified.
func Insert(times []float64, t float64, capacity int) []float64 {
	out := make([]float64, 0, len(times)+1)
	out = append(out, times...)
	out = append(out, t)
	sort.Float64s(out)
	if capacity > 0 && len(out) > capacity {
		out = out[:capacity]
	}
	return out
}

// Sanitize drops entries that are not valid elapsed times, sorts the rest
// and truncates to capacity.
func Sanitize(times []float64, capacity int) []float64 {
	out := make([]float64, 0, len(times))
	for _, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			continue
		}
		out = append(out, t)
	}
	sort.Float64s(out)
	if capacity > 0 && len(out) > capacity {
		out = out[:capacity]
	}
	return out
}

// rankOf returns the 1-based rank t takes when inserted into sorted times.
// A tie ranks after the entries it equals. It is 0 when t falls past capacity.
func rankOf(times []float64, t float64, capacity int) int {
	i := sort.Search(len(times), func(i int) bool { return times[i] > t })
	if capacity > 0 && i >= capacity {
		return 0
	}
	return i + 1
}

// Leaderboard holds the best times for one key.
// It is safe for concurrent use; sessions on an SSH server share one board.
type Leaderboard struct {
	// io serializes store writes; mu guards times and is never held across I/O.
	io       sync.Mutex
	mu       sync.Mutex
	store    Store
	key      string
	capacity int
	times    []float64
}

// New creates a leaderboard over store. Call Load to read persisted times.
func New(store Store, key string, capacity int) *Leaderboard {
	if key == "" {
		key = DefaultKey
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Leaderboard{
		store:    store,
		key:      key,
		capacity: capacity,
	}
}

// Key returns the storage key.
func (l *Leaderboard) Key() string {
	return l.key
}

// Capacity returns the maximum number of kept times.
func (l *Leaderboard) Capacity() int {
	return l.capacity
}

// Load reads persisted times. Any failure yields an empty board; the error
// is returned for logging only.
func (l *Leaderboard) Load(ctx context.Context) error {
	times, ok, err := l.store.Load(ctx, l.key)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err != nil {
		l.times = nil
		return fmt.Errorf("leaderboard: cannot load %q: %w", l.key, err)
	}
	if !ok {
		l.times = nil
		return nil
	}
	l.times = Sanitize(times, l.capacity)
	return nil
}

// Times returns a copy of the current times, ascending.
func (l *Leaderboard) Times() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]float64, len(l.times))
	copy(out, l.times)
	return out
}

// Best returns the lowest time and whether any exists.
func (l *Leaderboard) Best() (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.times) == 0 {
		return 0, false
	}
	return l.times[0], true
}

// Submit records a completion time in seconds and persists the board.
// It returns the 1-based rank of t, or 0 if it did not place.
// The in-memory board is updated even when persisting fails.
func (l *Leaderboard) Submit(ctx context.Context, t float64) (int, error) {
	l.io.Lock()
	defer l.io.Unlock()

	if u, ok := l.store.(Updater); ok {
		var rank int
		merged, err := u.Update(ctx, l.key, func(stored []float64) []float64 {
			stored = Sanitize(stored, l.capacity)
			rank = rankOf(stored, t, l.capacity)
			return Insert(stored, t, l.capacity)
		})

		l.mu.Lock()
		defer l.mu.Unlock()
		if err == nil {
			l.times = merged
			return rank, nil
		}
		rank = rankOf(l.times, t, l.capacity)
		l.times = Insert(l.times, t, l.capacity)
		return rank, fmt.Errorf("leaderboard: cannot update %q: %w", l.key, err)
	}

	l.mu.Lock()
	rank := rankOf(l.times, t, l.capacity)
	l.times = Insert(l.times, t, l.capacity)
	saved := make([]float64, len(l.times))
	copy(saved, l.times)
	l.mu.Unlock()

	if err := l.store.Save(ctx, l.key, saved); err != nil {
		return rank, fmt.Errorf("leaderboard: cannot save %q: %w", l.key, err)
	}
	return rank, nil
}
