package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-hubspot/internal/core/domain"
	"github.com/custodia-labs/sercha-hubspot/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ExpiringStore = (*Store)(nil)

// Store implements driven.ExpiringStore using PostgreSQL.
// Expired rows are invisible to Get and removed by Cleanup.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a new PostgreSQL-backed store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Set upserts value under key with an expiry of now+ttl.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("set %s: %w: ttl must be positive", key, domain.ErrInvalidInput)
	}

	query := `
		INSERT INTO ephemeral_values (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at
	`

	_, err := s.db.ExecContext(ctx, query, key, value, s.now().Add(ttl))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Get retrieves an unexpired value.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value FROM ephemeral_values
		WHERE key = $1 AND expires_at > $2
	`

	var value string
	err := s.db.QueryRowContext(ctx, query, key, s.now()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ephemeral_values WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Ping checks if the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Cleanup removes expired rows and reports how many were deleted.
func (s *Store) Cleanup(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM ephemeral_values WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup ephemeral values: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup ephemeral values: %w", err)
	}
	return removed, nil
}
