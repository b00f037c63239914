package storage

import (
	"context"
	"sync"
	"time"

	cache "github.com/go-pkgz/expirable-cache/v3"
	"github.com/google/uuid"
)

// MemoryStore is an in-process SessionStore. Values vanish with the process,
// which makes every process its own session.
type MemoryStore struct {
	mu     sync.Mutex // serializes Update
	values cache.Cache[string, string]
	ttl    time.Duration
}

var _ SessionStore = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		values: cache.NewCache[string, string]().WithTTL(ttl),
		ttl:    ttl,
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	m.values.Purge()
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id uuid.UUID, name string) (string, error) {
	value, ok := m.values.Get(Key(id, name))
	if !ok {
		return "", nil
	}
	return value, nil
}

func (m *MemoryStore) Save(ctx context.Context, id uuid.UUID, name string, value string) error {
	m.values.Set(Key(id, name), value, m.ttl)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, id uuid.UUID, name string, fn func(current string) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(id, name)
	current, _ := m.values.Get(key)
	next, err := fn(current)
	if err != nil {
		return err
	}
	m.values.Set(key, next, m.ttl)
	return nil
}

func (m *MemoryStore) Kind() string {
	return "memory"
}
