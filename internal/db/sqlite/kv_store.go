package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"Inkwell/internal/kv"
)

type kvStore struct {
	db *sql.DB
}

// NewKVStore returns a kv.Store persisted in the kv_entries table.
func NewKVStore(db *sql.DB) kv.Store {
	return &kvStore{db: db}
}

const upsertEntry = `
	INSERT INTO kv_entries (key, value, updated_at)
	VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

// Get returns the value stored under key
func (s *kvStore) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, kv.ErrEmptyKey
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts a single entry
func (s *kvStore) Set(key, value string) error {
	if key == "" {
		return kv.ErrEmptyKey
	}
	if _, err := s.db.Exec(upsertEntry, key, value); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// SetMany upserts all entries in one transaction
func (s *kvStore) SetMany(values map[string]string) error {
	for k := range values {
		if k == "" {
			return kv.ErrEmptyKey
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	for k, v := range values {
		if _, err := tx.Exec(upsertEntry, k, v); err != nil {
			return fmt.Errorf("failed to set %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Delete removes entries; missing keys are ignored
func (s *kvStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, k := range keys {
		if _, err := tx.Exec(`DELETE FROM kv_entries WHERE key = ?`, k); err != nil {
			return fmt.Errorf("failed to delete %q: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

var _ kv.Batcher = (*kvStore)(nil)
