package store

import (
	"time"

	"github.com/sadopc/hard75/internal/challenge"
)

type Setting struct {
	Key   string
	Value string
}

// TaskRow is a catalog entry with its storage metadata.
type TaskRow struct {
	challenge.Task
	Position  int
	CreatedAt time.Time
}

// SelfieGroup holds the days of one attempt that carry a selfie.
type SelfieGroup struct {
	Attempt int
	Days    []challenge.DayRecord
}

// LeaderboardEntry is one user's best completed attempt.
type LeaderboardEntry struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	TotalScore  int       `json:"total_score"`
	CompletedAt time.Time `json:"completed_at"`
}
