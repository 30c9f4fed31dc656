package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
)

// Ensure MockEphemeralStore implements ExpiringStore
var _ driven.ExpiringStore = (*MockEphemeralStore)(nil)

type mockEntry struct {
	value     string
	expiresAt time.Time
}

// MockEphemeralStore is an in-memory EphemeralStore with TTL support.
// Now can be replaced to move time forward in tests.
type MockEphemeralStore struct {
	mu      sync.Mutex
	entries map[string]mockEntry
	ttls    map[string]time.Duration

	Now func() time.Time

	// Error injection
	SetErr    error
	GetErr    error
	DeleteErr error
	PingErr   error
}

// NewMockEphemeralStore creates a new MockEphemeralStore
func NewMockEphemeralStore() *MockEphemeralStore {
	return &MockEphemeralStore{
		entries: make(map[string]mockEntry),
		ttls:    make(map[string]time.Duration),
		Now:     time.Now,
	}
}

func (m *MockEphemeralStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	if ttl <= 0 {
		return fmt.Errorf("set %s: %w: ttl must be positive", key, domain.ErrInvalidInput)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = mockEntry{value: value, expiresAt: m.Now().Add(ttl)}
	m.ttls[key] = ttl
	return nil
}

func (m *MockEphemeralStore) Get(ctx context.Context, key string) (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok || !m.Now().Before(entry.expiresAt) {
		return "", domain.ErrNotFound
	}
	return entry.value, nil
}

func (m *MockEphemeralStore) Delete(ctx context.Context, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	delete(m.ttls, key)
	return nil
}

func (m *MockEphemeralStore) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockEphemeralStore) Cleanup(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	now := m.Now()
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
			delete(m.ttls, key)
			removed++
		}
	}
	return removed, nil
}

// Helper methods for testing

// Put stores a raw value with the given TTL, bypassing error injection.
func (m *MockEphemeralStore) Put(key, value string, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = mockEntry{value: value, expiresAt: m.Now().Add(ttl)}
	m.ttls[key] = ttl
}

// Has reports whether key holds an unexpired value.
func (m *MockEphemeralStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	return ok && m.Now().Before(entry.expiresAt)
}

// Value returns the raw stored value.
func (m *MockEphemeralStore) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[key].value
}

// TTL returns the TTL the key was last written with.
func (m *MockEphemeralStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// Len returns the number of stored entries, expired or not.
func (m *MockEphemeralStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
