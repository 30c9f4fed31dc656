package driven

import (
	"context"
	"time"
)

// EphemeralStore holds short-lived string values under string keys.
// Values disappear when their TTL elapses; callers never see expired values.
type EphemeralStore interface {
	// Set stores value under key, replacing any previous value, for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value under key.
	// Returns domain.ErrNotFound when the key is absent or expired and
	// domain.ErrCorruptValue when the stored value cannot be read back.
	Get(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error
}

// ExpiringStore is implemented by backends without native expiry that need
// expired values swept periodically.
type ExpiringStore interface {
	EphemeralStore

	// Cleanup removes expired values and returns how many were removed.
	Cleanup(ctx context.Context) (int64, error)
}
