// Package sqlite stores collection snapshots in a SQLite key-value table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/pkg/database"
)

// Store implements port.Store on the kv_snapshots table
type Store struct {
	db     *database.DB
	logger *zap.Logger
}

// Open connects to the database file and applies pending migrations
func Open(ctx context.Context, cfg database.Config, logger *zap.Logger) (*Store, error) {
	db, err := database.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := database.NewMigrator(db, logger).Run(ctx, database.Migrations); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db, logger), nil
}

// NewStore wraps an already migrated database
func NewStore(db *database.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv_snapshots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", port.ErrKeyNotFound, key)
	}
	if err != nil {
		s.logger.Error("Failed to load snapshot", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}

// Save upserts the snapshot and appends a history row in one transaction
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var revision int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO kv_snapshots (key, value, revision, updated_at)
			VALUES (?, ?, 1, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				revision = kv_snapshots.revision + 1,
				updated_at = CURRENT_TIMESTAMP
			RETURNING revision`, key, value).Scan(&revision)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT INTO kv_snapshot_history (key, revision, size_bytes) VALUES (?, ?, ?)",
			key, revision, len(value),
		)
		if err != nil {
			return fmt.Errorf("failed to record history for %s: %w", key, err)
		}
		return nil
	})
}

// Revision returns how many times key has been saved
func (s *Store) Revision(ctx context.Context, key string) (int64, error) {
	var revision int64
	err := s.db.QueryRowContext(ctx, "SELECT revision FROM kv_snapshots WHERE key = ?", key).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return revision, err
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
