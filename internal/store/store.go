package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 2

// ErrNotFound is returned when a row to change does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout is fixed-width UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS challenge_days (
		attempt_number     INTEGER NOT NULL,
		day_number         INTEGER NOT NULL CHECK (day_number BETWEEN 1 AND 75),
		status             TEXT NOT NULL DEFAULT 'locked',
		total_tasks        INTEGER NOT NULL DEFAULT 0,
		completed_task_ids TEXT NOT NULL DEFAULT '',
		score              INTEGER NOT NULL DEFAULT 0,
		timestamp          TEXT,
		PRIMARY KEY (attempt_number, day_number)
	);

	CREATE INDEX IF NOT EXISTS idx_days_timestamp ON challenge_days(attempt_number, timestamp);

	CREATE TABLE IF NOT EXISTS tasks (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		position    INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('current_attempt', '1');

	INSERT OR IGNORE INTO tasks (id, name, position) VALUES
		('gym',       'Go to the Gym',      1),
		('water_1l',  'Drink 1L Water',     2),
		('water_2l',  'Drink 2L Water',     3),
		('water_3l',  'Drink 3L Water',     4),
		('walk',      'Outdoor Walk',       5),
		('read',      'Read 10 pages',      6),
		('steps_5k',  'Complete 5k steps',  7),
		('steps_10k', 'Complete 10k steps', 8),
		('no_junk',   'No Junk Food',       9);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// migrateV2 adds selfie attachments and the local leaderboard.
func (s *Store) migrateV2() error {
	const ddl = `
	ALTER TABLE challenge_days ADD COLUMN selfie_path TEXT NOT NULL DEFAULT '';
	ALTER TABLE challenge_days ADD COLUMN selfie_note TEXT NOT NULL DEFAULT '';

	CREATE TABLE IF NOT EXISTS leaderboard (
		user_id      TEXT PRIMARY KEY,
		user_name    TEXT NOT NULL,
		total_score  INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(total_score DESC);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/hard75/hard75.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "hard75", "hard75.db"), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by hand or by older builds.
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}
