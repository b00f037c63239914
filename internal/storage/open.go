package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jwebster45206/quell/internal/config"
	"github.com/jwebster45206/quell/pkg/storage"
)

// Open returns the session store selected by cfg: Redis when REDIS_URL is
// set, otherwise an in-process memory store.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.SessionStore, error) {
	if cfg.RedisURL == "" {
		logger.Info("Using in-memory session store", "ttl", cfg.SessionTTL)
		return storage.NewMemoryStore(cfg.SessionTTL), nil
	}

	store, err := NewRedisStore(cfg.RedisURL, cfg.SessionTTL, logger)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForConnection(ctx, 30, 2*time.Second); err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Info("Using Redis session store", "ttl", cfg.SessionTTL)
	return store, nil
}
