package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
)

// testDatabaseURLEnv names the database used by these tests. They are
// skipped when it is unset.
const testDatabaseURLEnv = "SERCHA_TEST_DATABASE_URL"

// setupTestStore connects to the test database and returns a Store with a
// controllable clock plus a key prefix unique to the test.
func setupTestStore(t *testing.T) (*Store, *time.Time, string) {
	t.Helper()
	url := os.Getenv(testDatabaseURLEnv)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURLEnv)
	}

	ctx := context.Background()
	db, err := Connect(ctx, DefaultConfig(url))
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to init schema: %v", err)
	}

	prefix := "test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(),
			`DELETE FROM ephemeral_values WHERE key LIKE $1`, prefix+"%")
		db.Close()
	})

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(db.DB)
	store.now = func() time.Time { return now }
	return store, &now, prefix
}

func TestStore_SetGet(t *testing.T) {
	store, _, prefix := setupTestStore(t)
	ctx := context.Background()
	key := prefix + "state:org-1:user-1"

	if err := store.Set(ctx, key, `{"state":"n"}`, 600*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != `{"state":"n"}` {
		t.Errorf("expected stored value, got %q", value)
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	store, now, prefix := setupTestStore(t)
	ctx := context.Background()
	key := prefix + "state:org-1:user-1"

	_ = store.Set(ctx, key, "first", time.Minute)
	if err := store.Set(ctx, key, "second", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The upsert also replaces the expiry
	*now = now.Add(2 * time.Minute)
	value, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "second" {
		t.Errorf("expected 'second', got %q", value)
	}
}

func TestStore_SetNonPositiveTTL(t *testing.T) {
	store, _, prefix := setupTestStore(t)

	err := store.Set(context.Background(), prefix+"k", "v", 0)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStore_GetNotFound(t *testing.T) {
	store, _, prefix := setupTestStore(t)

	_, err := store.Get(context.Background(), prefix+"missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_GetExpired(t *testing.T) {
	store, now, prefix := setupTestStore(t)
	ctx := context.Background()
	key := prefix + "state:org-1:user-1"

	_ = store.Set(ctx, key, "v", 600*time.Second)

	*now = now.Add(599 * time.Second)
	if _, err := store.Get(ctx, key); err != nil {
		t.Errorf("expected value before expiry, got %v", err)
	}

	*now = now.Add(time.Second)
	if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound at expiry, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store, _, prefix := setupTestStore(t)
	ctx := context.Background()
	key := prefix + "credentials:org-1:user-1"

	_ = store.Set(ctx, key, "v", time.Hour)
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting again is not an error
	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

func TestStore_Cleanup(t *testing.T) {
	store, now, prefix := setupTestStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, prefix+"state:a", "a", time.Minute)
	_ = store.Set(ctx, prefix+"state:b", "b", time.Minute)
	_ = store.Set(ctx, prefix+"credentials:a", "c", time.Hour)

	// Rows from other tests may expire too, so only a lower bound is exact
	*now = now.Add(2 * time.Minute)
	removed, err := store.Cleanup(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed < 2 {
		t.Errorf("expected at least 2 rows removed, got %d", removed)
	}

	var left int
	err = store.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ephemeral_values WHERE key LIKE $1`, prefix+"%").Scan(&left)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left != 1 {
		t.Errorf("expected 1 row left, got %d", left)
	}
	if value, err := store.Get(ctx, prefix+"credentials:a"); err != nil || value != "c" {
		t.Errorf("expected live row to survive, got %q, %v", value, err)
	}

	// A second pass leaves the live row alone
	if _, err := store.Cleanup(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, prefix+"credentials:a"); err != nil {
		t.Errorf("expected live row to survive a second cleanup, got %v", err)
	}
}

func TestStore_Ping(t *testing.T) {
	store, _, _ := setupTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
