package store

import (
	"fmt"
	"time"
)

// UpsertScore records a completed attempt. A user keeps their best score;
// a lower submission leaves the entry unchanged.
func (s *Store) UpsertScore(e LeaderboardEntry) error {
	if e.UserID == "" {
		return fmt.Errorf("upsert score: user id is required")
	}
	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO leaderboard (user_id, user_name, total_score, completed_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			user_name = excluded.user_name,
			total_score = excluded.total_score,
			completed_at = excluded.completed_at
		 WHERE excluded.total_score >= leaderboard.total_score`,
		e.UserID, e.UserName, e.TotalScore, formatTime(e.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert score for %q: %w", e.UserID, err)
	}
	return nil
}

// ListLeaderboard returns entries by score, highest first. Earlier
// completions win ties. limit <= 0 means no limit.
func (s *Store) ListLeaderboard(limit int) ([]LeaderboardEntry, error) {
	query := `SELECT user_id, user_name, total_score, completed_at FROM leaderboard
		ORDER BY total_score DESC, completed_at ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		var completedAt string
		if err := rows.Scan(&e.UserID, &e.UserName, &e.TotalScore, &completedAt); err != nil {
			return nil, err
		}
		e.CompletedAt, _ = parseTime(completedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
