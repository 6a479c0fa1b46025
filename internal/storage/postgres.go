package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/uleam/vehicle-gate/internal/platform/db"
)

// Schema creates the table used by the Postgres backend.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS client_storage (
	profile_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (profile_id, key)
)`,
	`CREATE INDEX IF NOT EXISTS client_storage_updated_at_idx ON client_storage (updated_at)`,
}

// Postgres keeps profile storage in the client_storage table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres backend.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the backing table when missing.
func (b *Postgres) Migrate(ctx context.Context) error {
	return db.WithTx(ctx, b.pool, func(tx pgx.Tx) error {
		for _, stmt := range Schema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("storage: migrate: %w", err)
			}
		}
		return nil
	})
}

// Profile implements Provider.
func (b *Postgres) Profile(profileID string) Store {
	return &postgresStore{pool: b.pool, profile: profileID}
}

// Sweep deletes every profile whose most recent access is older than
// retention. Get stamps updated_at, so reads count as access.
func (b *Postgres) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC()
	rows, err := b.pool.Query(ctx, `DELETE FROM client_storage WHERE profile_id IN (
		SELECT profile_id FROM client_storage GROUP BY profile_id HAVING max(updated_at) < $1
	) RETURNING profile_id`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("storage: sweep: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, fmt.Errorf("storage: sweep: %w", err)
	}
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	return int64(len(unique)), nil
}

type postgresStore struct {
	pool    *pgxpool.Pool
	profile string
}

func (s *postgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	var value string
	err := s.pool.QueryRow(ctx, `UPDATE client_storage SET updated_at = now()
		WHERE profile_id = $1 AND key = $2 RETURNING value`, s.profile, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: postgres get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *postgresStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO client_storage (profile_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (profile_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		s.profile, key, value)
	if err != nil {
		return fmt.Errorf("storage: postgres set %s: %w", key, err)
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM client_storage WHERE profile_id = $1 AND key = $2`, s.profile, key); err != nil {
		return fmt.Errorf("storage: postgres delete %s: %w", key, err)
	}
	return nil
}
