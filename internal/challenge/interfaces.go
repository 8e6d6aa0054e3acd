package challenge

import "context"

// DayStore persists day records keyed by (attempt, day). Lookups return
// nil, nil when the record does not exist.
type DayStore interface {
	GetDay(attempt, day int) (*DayRecord, error)
	GetLatestUpdatedDay(attempt int) (*DayRecord, error)
	GetAllDays(attempt int) ([]DayRecord, error)
	UpsertDay(d DayRecord) error
}

// AttemptCounter is the durable id of the active attempt.
type AttemptCounter interface {
	CurrentAttempt() (int, error)
	IncrementAttempt() (int, error)
}

// TaskCatalog lists the user's daily tasks in display order.
type TaskCatalog interface {
	ListTasks() ([]Task, error)
}

// Notifier receives the final score of a completed attempt.
type Notifier interface {
	SubmitScore(ctx context.Context, s ScoreSubmission) error
}
