package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sadopc/hard75/internal/challenge"
)

const dayColumns = `attempt_number, day_number, status, total_tasks, completed_task_ids, score, timestamp, selfie_path, selfie_note`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDay(r rowScanner) (*challenge.DayRecord, error) {
	var (
		d         challenge.DayRecord
		status    string
		ids       string
		timestamp sql.NullString
	)
	if err := r.Scan(&d.AttemptNumber, &d.DayNumber, &status, &d.TotalTasks, &ids, &d.Score, &timestamp, &d.SelfiePath, &d.SelfieNote); err != nil {
		return nil, err
	}
	st, err := challenge.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("day %d/%d: %w", d.AttemptNumber, d.DayNumber, err)
	}
	d.Status = st
	d.CompletedTaskIDs = splitIDs(ids)
	if timestamp.Valid {
		t, err := parseTime(timestamp.String)
		if err != nil {
			return nil, fmt.Errorf("day %d/%d timestamp: %w", d.AttemptNumber, d.DayNumber, err)
		}
		d.Timestamp = &t
	}
	return &d, nil
}

func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (s *Store) GetDay(attempt, day int) (*challenge.DayRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+dayColumns+` FROM challenge_days WHERE attempt_number = ? AND day_number = ?`,
		attempt, day,
	)
	d, err := scanDay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get day %d/%d: %w", attempt, day, err)
	}
	return d, nil
}

// GetLatestUpdatedDay returns the most recently stamped day of the attempt,
// or nil when no day has a timestamp yet. Ties go to the later day.
func (s *Store) GetLatestUpdatedDay(attempt int) (*challenge.DayRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+dayColumns+` FROM challenge_days
		 WHERE attempt_number = ? AND timestamp IS NOT NULL
		 ORDER BY timestamp DESC, day_number DESC LIMIT 1`,
		attempt,
	)
	d, err := scanDay(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest day of attempt %d: %w", attempt, err)
	}
	return d, nil
}

func (s *Store) GetAllDays(attempt int) ([]challenge.DayRecord, error) {
	return s.queryDays(
		`SELECT `+dayColumns+` FROM challenge_days WHERE attempt_number = ? ORDER BY day_number`,
		attempt,
	)
}

// ListAllDays returns every record of every attempt.
func (s *Store) ListAllDays() ([]challenge.DayRecord, error) {
	return s.queryDays(`SELECT ` + dayColumns + ` FROM challenge_days ORDER BY attempt_number, day_number`)
}

// ListSelfieDays returns days with an attached selfie, newest attempt first.
func (s *Store) ListSelfieDays() ([]SelfieGroup, error) {
	days, err := s.queryDays(
		`SELECT ` + dayColumns + ` FROM challenge_days
		 WHERE selfie_path != ''
		 ORDER BY attempt_number DESC, day_number`,
	)
	if err != nil {
		return nil, err
	}
	var groups []SelfieGroup
	for _, d := range days {
		if n := len(groups); n == 0 || groups[n-1].Attempt != d.AttemptNumber {
			groups = append(groups, SelfieGroup{Attempt: d.AttemptNumber})
		}
		g := &groups[len(groups)-1]
		g.Days = append(g.Days, d)
	}
	return groups, nil
}

func (s *Store) queryDays(query string, args ...any) ([]challenge.DayRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	defer rows.Close()

	var days []challenge.DayRecord
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, *d)
	}
	return days, rows.Err()
}

// UpsertDay replaces the record for (attempt, day) wholesale.
func (s *Store) UpsertDay(d challenge.DayRecord) error {
	if !d.Status.IsValid() {
		return fmt.Errorf("upsert day %d/%d: invalid status %q", d.AttemptNumber, d.DayNumber, d.Status)
	}
	var timestamp any
	if d.Timestamp != nil {
		timestamp = formatTime(*d.Timestamp)
	}
	_, err := s.db.Exec(
		`INSERT INTO challenge_days (`+dayColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(attempt_number, day_number) DO UPDATE SET
			status = excluded.status,
			total_tasks = excluded.total_tasks,
			completed_task_ids = excluded.completed_task_ids,
			score = excluded.score,
			timestamp = excluded.timestamp,
			selfie_path = excluded.selfie_path,
			selfie_note = excluded.selfie_note`,
		d.AttemptNumber, d.DayNumber, string(d.Status), d.TotalTasks,
		strings.Join(d.CompletedTaskIDs, ","), d.Score, timestamp, d.SelfiePath, d.SelfieNote,
	)
	if err != nil {
		return fmt.Errorf("upsert day %d/%d: %w", d.AttemptNumber, d.DayNumber, err)
	}
	return nil
}

// DeleteAllDays removes the records of every attempt.
func (s *Store) DeleteAllDays() error {
	if _, err := s.db.Exec(`DELETE FROM challenge_days`); err != nil {
		return fmt.Errorf("delete days: %w", err)
	}
	return nil
}
