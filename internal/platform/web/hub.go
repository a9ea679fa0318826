// Package web exposes maze sessions over a JSON HTTP API built on gin.
package web

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
	"github.com/vovakirdan/tui-maze/internal/session"
	"github.com/vovakirdan/tui-maze/internal/tracker"
)

// Hub errors.
var (
	ErrSessionNotFound = errors.New("web: session not found")
	ErrTooManySessions = errors.New("web: too many sessions")
)

// HubConfig configures a Hub.
type HubConfig struct {
	Session     session.Config
	Leaderboard *leaderboard.Leaderboard // shared by every session; nil means in-memory
	Runs        session.RunSink          // optional
	TTL         time.Duration            // idle sessions older than this are evicted; 0 disables
	MaxSessions int                      // 0 means unlimited
	Logger      *log.Logger
}

// entry guards one session. Requests for the same session are serialized.
// lastSeen is read by eviction without taking mu.
type entry struct {
	mu       sync.Mutex
	sess     *session.GameSession
	lastSeen atomic.Int64 // unix nanoseconds
}

func newEntry(sess *session.GameSession, now time.Time) *entry {
	e := &entry{sess: sess}
	e.touch(now)
	return e
}

func (e *entry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

func (e *entry) idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, e.lastSeen.Load()))
}

// Hub owns the sessions of the HTTP API.
type Hub struct {
	cfg    HubConfig
	now    func() time.Time
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewHub creates an empty hub.
func NewHub(cfg HubConfig) *Hub {
	if cfg.Leaderboard == nil {
		cfg.Leaderboard = leaderboard.New(nil, "", 0)
	}
	if cfg.Session.Geometry.CellSize <= 0 {
		cfg.Session.Geometry = tracker.DefaultGeometry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
}

// Leaderboard returns the shared board.
func (h *Hub) Leaderboard() *leaderboard.Leaderboard {
	return h.cfg.Leaderboard
}

// Len returns the number of live sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Create starts a new idle session and returns its id and initial state.
// Expired sessions are evicted first when the hub is full.
func (h *Hub) Create(ctx context.Context, player string) (string, session.State, error) {
	h.mu.Lock()
	if h.cfg.MaxSessions > 0 && len(h.sessions) >= h.cfg.MaxSessions {
		h.evictLocked(h.now())
	}
	if h.cfg.MaxSessions > 0 && len(h.sessions) >= h.cfg.MaxSessions {
		h.mu.Unlock()
		return "", session.State{}, ErrTooManySessions
	}
	h.mu.Unlock()

	id := uuid.NewString()
	opts := []session.Option{
		session.WithLogger(h.logger.With("session", id)),
		session.WithPlayer(player),
	}
	if h.cfg.Runs != nil {
		opts = append(opts, session.WithRunSink(h.cfg.Runs))
	}
	sess := session.New(ctx, h.cfg.Session, h.cfg.Leaderboard, opts...)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cfg.MaxSessions > 0 && len(h.sessions) >= h.cfg.MaxSessions {
		return "", session.State{}, ErrTooManySessions
	}
	h.sessions[id] = newEntry(sess, h.now())

	h.logger.Debug("session created", "session", id, "player", player, "sessions", len(h.sessions))
	return id, sess.Snapshot(), nil
}

// With runs fn on the session with the given id while holding its lock.
func (h *Hub) With(id string, fn func(*session.GameSession) error) error {
	h.mu.Lock()
	e, ok := h.sessions[id]
	h.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.touch(h.now())
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

// Delete removes a session. It reports whether the session existed.
func (h *Hub) Delete(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[id]; !ok {
		return false
	}
	delete(h.sessions, id)
	h.logger.Debug("session deleted", "session", id)
	return true
}

// Evict removes sessions idle for longer than the TTL and returns how many.
func (h *Hub) Evict() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.evictLocked(h.now())
}

func (h *Hub) evictLocked(now time.Time) int {
	if h.cfg.TTL <= 0 {
		return 0
	}

	n := 0
	for id, e := range h.sessions {
		if e.idle(now) > h.cfg.TTL {
			delete(h.sessions, id)
			n++
		}
	}
	if n > 0 {
		h.logger.Info("evicted idle sessions", "count", n, "remaining", len(h.sessions))
	}
	return n
}

// Run evicts idle sessions periodically until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.cfg.TTL <= 0 {
		return
	}

	interval := h.cfg.TTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Evict()
		}
	}
}
