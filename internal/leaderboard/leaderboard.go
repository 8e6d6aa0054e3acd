// Package leaderboard reports completed attempts and serves the ranking.
package leaderboard

import (
	"context"
	"time"

	"github.com/sadopc/hard75/internal/challenge"
	"github.com/sadopc/hard75/internal/store"
)

// Scores is the persistence the leaderboard needs.
type Scores interface {
	UpsertScore(e store.LeaderboardEntry) error
	ListLeaderboard(limit int) ([]store.LeaderboardEntry, error)
}

// Submission is the request body of POST /api/scores.
type Submission struct {
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	TotalScore  int       `json:"total_score"`
	CompletedAt time.Time `json:"completed_at"`
}

func (s Submission) entry() store.LeaderboardEntry {
	return store.LeaderboardEntry{
		UserID:      s.UserID,
		UserName:    s.UserName,
		TotalScore:  s.TotalScore,
		CompletedAt: s.CompletedAt,
	}
}

// LocalNotifier records scores straight into the local database. It is used
// when no leaderboard server is configured.
type LocalNotifier struct {
	scores Scores
	now    func() time.Time
}

func NewLocalNotifier(scores Scores) *LocalNotifier {
	return &LocalNotifier{scores: scores, now: time.Now}
}

func (n *LocalNotifier) SubmitScore(ctx context.Context, s challenge.ScoreSubmission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.scores.UpsertScore(store.LeaderboardEntry{
		UserID:      s.UserID,
		UserName:    s.UserName,
		TotalScore:  s.TotalScore,
		CompletedAt: n.now(),
	})
}

// Fetch returns the local ranking, best first.
func (n *LocalNotifier) Fetch(ctx context.Context, limit int) ([]store.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return n.scores.ListLeaderboard(limit)
}
