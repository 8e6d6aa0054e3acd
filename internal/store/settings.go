package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

const (
	keyCurrentAttempt = "current_attempt"
	keyUserID         = "user_id"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// CurrentAttempt returns the active attempt number, 1 when none was stored.
func (s *Store) CurrentAttempt() (int, error) {
	return currentAttempt(s.db)
}

type queryRower interface {
	QueryRow(query string, args ...any) *sql.Row
}

func currentAttempt(q queryRower) (int, error) {
	var value string
	err := q.QueryRow(`SELECT value FROM settings WHERE key = ?`, keyCurrentAttempt).Scan(&value)
	if err == sql.ErrNoRows {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get current attempt: %w", err)
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("get current attempt: bad value %q", value)
	}
	return n, nil
}

// IncrementAttempt bumps the attempt counter and returns the new value.
func (s *Store) IncrementAttempt() (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	n, err := currentAttempt(tx)
	if err != nil {
		return 0, err
	}
	n++
	if _, err := tx.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		keyCurrentAttempt, strconv.Itoa(n),
	); err != nil {
		return 0, fmt.Errorf("increment attempt: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// ResetAttempts puts the counter back to 1.
func (s *Store) ResetAttempts() error {
	if err := s.SetSetting(keyCurrentAttempt, "1"); err != nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

// UserID returns the local user's id, generating and saving one on first
// use.
func (s *Store) UserID() (string, error) {
	id, err := s.GetSetting(keyUserID)
	if err == nil && id != "" {
		return id, nil
	}
	id = uuid.NewString()
	if err := s.SetSetting(keyUserID, id); err != nil {
		return "", fmt.Errorf("save user id: %w", err)
	}
	return id, nil
}
