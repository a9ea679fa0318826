package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/tui-maze/internal/leaderboard"
)

// lockExpiry bounds how long a crashed holder can block other writers.
const lockExpiry = 5 * time.Second

// RedisStore keeps leaderboard values as JSON strings in Redis.
// Update is serialized across processes with a redsync mutex.
type RedisStore struct {
	client *redis.Client
	locker *redsync.Redsync
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	pool := goredis.NewPool(client)
	return &RedisStore{
		client: client,
		locker: redsync.New(pool),
	}
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: cannot connect to redis at %s: %w", addr, err)
	}
	return NewRedisStore(client), nil
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Load implements leaderboard.Store.
func (r *RedisStore) Load(ctx context.Context, key string) ([]float64, bool, error) {
	raw, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: cannot read %q: %w", key, err)
	}

	var times []float64
	if err := json.Unmarshal([]byte(raw), &times); err != nil {
		return nil, false, fmt.Errorf("storage: corrupt value under %q: %w", key, err)
	}
	return times, true, nil
}

// Save implements leaderboard.Store.
func (r *RedisStore) Save(ctx context.Context, key string, times []float64) error {
	raw, err := encodeTimes(times)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("storage: cannot write %q: %w", key, err)
	}
	return nil
}

// Update implements leaderboard.Updater under the mutex "<key>:lock".
func (r *RedisStore) Update(ctx context.Context, key string, fn func([]float64) []float64) ([]float64, error) {
	mutex := r.locker.NewMutex(key+":lock", redsync.WithExpiry(lockExpiry))
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("storage: cannot lock %q: %w", key, err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(ctx)
	}()

	current, _, err := r.Load(ctx, key)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &syntaxErr) && !errors.As(err, &typeErr) {
			return nil, err
		}
		current = nil
	}

	next := fn(current)
	if err := r.Save(ctx, key, next); err != nil {
		return nil, err
	}
	return next, nil
}

var (
	_ leaderboard.Store   = (*RedisStore)(nil)
	_ leaderboard.Updater = (*RedisStore)(nil)
)
