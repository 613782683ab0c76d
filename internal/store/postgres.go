// Package store persists the authoritative configuration document. The
// document lives in a single slot; every save is a wholesale replacement.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no document has been published yet.
var ErrNotFound = errors.New("store: config not found")

const configSlot = "site"

type ConfigRecord struct {
	Data      json.RawMessage
	UpdatedAt time.Time
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetConfig returns the stored document, or ErrNotFound when the slot is
// still empty.
func (s *PostgresStore) GetConfig(ctx context.Context) (ConfigRecord, error) {
	const query = `SELECT data, updated_at FROM config_documents WHERE slot = $1`
	var record ConfigRecord
	err := s.db.QueryRowContext(ctx, query, configSlot).Scan(&record.Data, &record.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ConfigRecord{}, ErrNotFound
	}
	if err != nil {
		return ConfigRecord{}, fmt.Errorf("get config: %w", err)
	}
	return record, nil
}

// SaveConfig replaces the stored document wholesale.
func (s *PostgresStore) SaveConfig(ctx context.Context, data json.RawMessage) error {
	const query = `
		INSERT INTO config_documents (slot, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, configSlot, data); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
