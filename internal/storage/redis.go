package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quell/pkg/storage"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements storage.SessionStore on Redis. Every Save writes
// with the session TTL, so idle sessions expire on their own.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// maxUpdateAttempts bounds optimistic retries when a watched key changes
// under an Update.
const maxUpdateAttempts = 50

// ErrUpdateConflict is returned when an Update kept losing to concurrent writers.
var ErrUpdateConflict = errors.New("session value changed concurrently")

// Ensure RedisStore implements SessionStore interface
var _ storage.SessionStore = (*RedisStore)(nil)

// NewRedisStore accepts either a redis:// URL or a bare host:port address.
func NewRedisStore(redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisStore, error) {
	opt := &redis.Options{Addr: redisURL}
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis URL: %w", err)
		}
		opt = parsed
	}

	return &RedisStore{
		client: redis.NewClient(opt),
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Session value operations

func (r *RedisStore) Load(ctx context.Context, id uuid.UUID, name string) (string, error) {
	key := storage.Key(id, name)
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Session value not found", "key", key)
			return "", nil
		}
		r.logger.Error("Failed to load session value", "key", key, "error", err)
		return "", fmt.Errorf("failed to load session value: %w", err)
	}
	return value, nil
}

func (r *RedisStore) Save(ctx context.Context, id uuid.UUID, name string, value string) error {
	key := storage.Key(id, name)
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save session value", "key", key, "error", err)
		return fmt.Errorf("failed to save session value: %w", err)
	}
	r.logger.Debug("Session value saved", "key", key, "value_length", len(value))
	return nil
}

// Update runs fn inside WATCH/MULTI on the key and retries when another
// client writes the key between the read and the EXEC.
func (r *RedisStore) Update(ctx context.Context, id uuid.UUID, name string, fn func(current string) (string, error)) error {
	key := storage.Key(id, name)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			r.logger.Debug("Session value changed during update, retrying", "key", key, "attempt", attempt)
			continue
		}
		if err != nil {
			r.logger.Error("Failed to update session value", "key", key, "error", err)
			return fmt.Errorf("failed to update session value: %w", err)
		}
		return nil
	}

	r.logger.Warn("Giving up on contended session value", "key", key, "attempts", maxUpdateAttempts)
	return fmt.Errorf("failed to update session value: %w", ErrUpdateConflict)
}

func (r *RedisStore) Kind() string {
	return "redis"
}
