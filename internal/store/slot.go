package store

import (
	"database/sql"
	"time"
)

// SetSlot upserts the value stored under key as a single write.
func (s *Store) SetSlot(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	return err
}

// GetSlot returns the value stored under key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetSlot(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv_slots WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
