// Package sqlite is the SQLite backed key map repository
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "keymap-engine/internal/common/errors"
	"keymap-engine/internal/storage"
)

type Config struct {
	DatabasePath string
}

func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return apperrors.ConfigError("database path is required")
	}
	return nil
}

type Adapter struct {
	db *sql.DB
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite config: %w", err)
	}

	db, err := sql.Open("sqlite3", config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	adapter := &Adapter{db: db}

	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return adapter, nil
}

func (a *Adapter) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS key_maps (
			uid TEXT PRIMARY KEY,
			enabled BOOLEAN NOT NULL DEFAULT 1,
			trigger_data TEXT NOT NULL DEFAULT '{}',
			action_data TEXT NOT NULL DEFAULT '[]',
			constraint_data TEXT DEFAULT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_key_maps_enabled ON key_maps(enabled)`,
	}

	for _, query := range queries {
		if _, err := a.db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (a *Adapter) CreateKeyMap(ctx context.Context, record *storage.KeyMapRecord) error {
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := a.db.ExecContext(ctx,
		`INSERT INTO key_maps (uid, enabled, trigger_data, action_data, constraint_data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.UID, record.Enabled, string(record.Trigger), string(record.Actions),
		nullableBlob(record.Constraints), record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return apperrors.InternalError("failed to create key map", err)
	}
	return nil
}

func (a *Adapter) GetKeyMap(ctx context.Context, uid string) (*storage.KeyMapRecord, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT uid, enabled, trigger_data, action_data, constraint_data, created_at, updated_at
		 FROM key_maps WHERE uid = ?`, uid)

	record, err := scanKeyMap(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFoundError("key map").WithContext("uid", uid)
	}
	if err != nil {
		return nil, apperrors.InternalError("failed to get key map", err)
	}
	return record, nil
}

func (a *Adapter) UpdateKeyMap(ctx context.Context, record *storage.KeyMapRecord) error {
	record.UpdatedAt = time.Now().UTC()

	result, err := a.db.ExecContext(ctx,
		`UPDATE key_maps
		 SET enabled = ?, trigger_data = ?, action_data = ?, constraint_data = ?, updated_at = ?
		 WHERE uid = ?`,
		record.Enabled, string(record.Trigger), string(record.Actions),
		nullableBlob(record.Constraints), record.UpdatedAt, record.UID)
	if err != nil {
		return apperrors.InternalError("failed to update key map", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.InternalError("failed to update key map", err)
	}
	if affected == 0 {
		return apperrors.NotFoundError("key map").WithContext("uid", record.UID)
	}
	return nil
}

func (a *Adapter) DeleteKeyMap(ctx context.Context, uid string) error {
	result, err := a.db.ExecContext(ctx, `DELETE FROM key_maps WHERE uid = ?`, uid)
	if err != nil {
		return apperrors.InternalError("failed to delete key map", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.InternalError("failed to delete key map", err)
	}
	if affected == 0 {
		return apperrors.NotFoundError("key map").WithContext("uid", uid)
	}
	return nil
}

func (a *Adapter) ListKeyMaps(ctx context.Context) ([]*storage.KeyMapRecord, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT uid, enabled, trigger_data, action_data, constraint_data, created_at, updated_at
		 FROM key_maps ORDER BY created_at`)
	if err != nil {
		return nil, apperrors.InternalError("failed to list key maps", err)
	}
	defer rows.Close()

	var records []*storage.KeyMapRecord
	for rows.Next() {
		record, err := scanKeyMap(rows)
		if err != nil {
			return nil, apperrors.InternalError("failed to scan key map", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.InternalError("failed to list key maps", err)
	}
	return records, nil
}

func (a *Adapter) Health() error {
	return a.db.Ping()
}

func (a *Adapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanKeyMap(row rowScanner) (*storage.KeyMapRecord, error) {
	var record storage.KeyMapRecord
	var triggerData, actionData string
	var constraintData sql.NullString

	err := row.Scan(&record.UID, &record.Enabled, &triggerData, &actionData,
		&constraintData, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	record.Trigger = []byte(triggerData)
	record.Actions = []byte(actionData)
	if constraintData.Valid {
		record.Constraints = []byte(constraintData.String)
	}
	return &record, nil
}

func nullableBlob(data []byte) interface{} {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
