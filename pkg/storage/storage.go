package storage

import (
	"context"

	"github.com/google/uuid"
)

// SessionStore persists small string values scoped to a session. Values
// expire when the session goes idle for longer than the store's TTL; every
// Save refreshes the TTL of the key it writes.
type SessionStore interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Load returns the value stored under name for the session.
	// Returns "" and no error if nothing is stored.
	Load(ctx context.Context, id uuid.UUID, name string) (string, error)

	// Save stores value under name for the session.
	Save(ctx context.Context, id uuid.UUID, name string, value string) error

	// Update replaces the value under name with fn(current) atomically with
	// respect to other Updates of the same key. current is "" if nothing is
	// stored. fn may run more than once; an error from fn aborts the write.
	Update(ctx context.Context, id uuid.UUID, name string, fn func(current string) (string, error)) error

	// Kind names the backend, e.g. "memory" or "redis".
	Kind() string
}

// Key is the flat key a session value is stored under.
func Key(id uuid.UUID, name string) string {
	return "session:" + id.String() + ":" + name
}
