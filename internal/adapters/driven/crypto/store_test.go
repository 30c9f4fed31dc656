package crypto

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven/mocks"
)

func setupTestStore(t *testing.T) (*EncryptingStore, *mocks.MockEphemeralStore) {
	t.Helper()
	encryptor, err := NewSecretEncryptorFromMaster("test-master-key")
	if err != nil {
		t.Fatalf("NewSecretEncryptorFromMaster: %v", err)
	}
	inner := mocks.NewMockEphemeralStore()
	return NewEncryptingStore(inner, encryptor), inner
}

func TestEncryptingStore_RoundTrip(t *testing.T) {
	store, inner := setupTestStore(t)
	ctx := context.Background()

	value := `{"access_token":"secret-token"}`
	if err := store.Set(ctx, "credentials:org-1:user-1", value, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	raw := inner.Value("credentials:org-1:user-1")
	if strings.Contains(raw, "secret-token") {
		t.Error("inner store holds plaintext")
	}
	if inner.TTL("credentials:org-1:user-1") != time.Hour {
		t.Errorf("TTL not passed through: %v", inner.TTL("credentials:org-1:user-1"))
	}

	got, err := store.Get(ctx, "credentials:org-1:user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != value {
		t.Errorf("got %q, want %q", got, value)
	}
}

func TestEncryptingStore_NotFoundPassesThrough(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEncryptingStore_CorruptValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"plaintext", `{"access_token":"tok"}`},
		{"not base64", "%%%"},
		{"short blob", "AQID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, inner := setupTestStore(t)
			inner.Put("k", tt.value, time.Minute)

			_, err := store.Get(context.Background(), "k")
			if !errors.Is(err, domain.ErrCorruptValue) {
				t.Errorf("expected ErrCorruptValue, got %v", err)
			}
		})
	}
}

func TestEncryptingStore_ValueMovedToOtherKey(t *testing.T) {
	store, inner := setupTestStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, "credentials:org-1:user-1", "secret", time.Hour)
	inner.Put("credentials:org-1:user-2", inner.Value("credentials:org-1:user-1"), time.Hour)

	_, err := store.Get(ctx, "credentials:org-1:user-2")
	if !errors.Is(err, domain.ErrCorruptValue) {
		t.Errorf("expected ErrCorruptValue, got %v", err)
	}
}

func TestEncryptingStore_DeleteAndPing(t *testing.T) {
	store, inner := setupTestStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, "k", "v", time.Minute)
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if inner.Has("k") {
		t.Error("expected key deleted from inner store")
	}

	inner.PingErr = errors.New("down")
	if err := store.Ping(ctx); err == nil {
		t.Error("expected ping error from inner store")
	}
}
