package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockStore is a mock implementation of SessionStore for testing
type MockStore struct {
	mu        sync.RWMutex
	values    map[string]string
	pingError error
	saveError error

	SaveCalls int
}

// Ensure MockStore implements SessionStore interface
var _ SessionStore = (*MockStore)(nil)

// NewMockStore creates a new mock store
func NewMockStore() *MockStore {
	return &MockStore{
		values: make(map[string]string),
	}
}

// SetPingSuccess configures the mock to succeed on ping
func (m *MockStore) SetPingSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = nil
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetSaveError configures the mock to fail every Save with the given error
func (m *MockStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveError = err
}

// Put seeds a raw value, bypassing Save
func (m *MockStore) Put(id uuid.UUID, name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[Key(id, name)] = value
}

// Raw returns the stored value without going through Load
func (m *MockStore) Raw(id uuid.UUID, name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[Key(id, name)]
	return v, ok
}

func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) Load(ctx context.Context, id uuid.UUID, name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[Key(id, name)], nil
}

func (m *MockStore) Save(ctx context.Context, id uuid.UUID, name string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.saveError != nil {
		return m.saveError
	}
	m.values[Key(id, name)] = value
	return nil
}

// Update counts as a Save call and fails the same way.
func (m *MockStore) Update(ctx context.Context, id uuid.UUID, name string, fn func(current string) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.saveError != nil {
		return m.saveError
	}
	key := Key(id, name)
	next, err := fn(m.values[key])
	if err != nil {
		return err
	}
	m.values[key] = next
	return nil
}

func (m *MockStore) Kind() string {
	return "mock"
}
