package crypto

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EphemeralStore = (*EncryptingStore)(nil)

// EncryptingStore seals values before handing them to the wrapped store.
// The key is bound as associated data, so a value copied under another key
// fails to open.
type EncryptingStore struct {
	inner driven.EphemeralStore
	enc   *SecretEncryptor
}

// NewEncryptingStore wraps inner with enc.
func NewEncryptingStore(inner driven.EphemeralStore, enc *SecretEncryptor) *EncryptingStore {
	return &EncryptingStore{inner: inner, enc: enc}
}

func (s *EncryptingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	blob, err := s.enc.Seal([]byte(value), []byte(key))
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, base64.StdEncoding.EncodeToString(blob), ttl)
}

// Get opens the stored value. Anything that fails to decode or authenticate
// is reported as domain.ErrCorruptValue.
func (s *EncryptingStore) Get(ctx context.Context, key string) (string, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}

	blob, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrCorruptValue, key, err)
	}
	plaintext, err := s.enc.Open(blob, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrCorruptValue, key, err)
	}
	return string(plaintext), nil
}

func (s *EncryptingStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

func (s *EncryptingStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}
