// Package challenge implements the 75-day challenge: day records, the day
// status engine that decides how the calendar moves, and the lifecycle
// manager that applies those decisions to storage.
package challenge

import (
	"fmt"
	"strings"
	"time"
)

const (
	// TotalDays is the length of one attempt.
	TotalDays = 75

	// CompletedBonus is the score of a fully completed day.
	CompletedBonus = 10

	// SelfieTaskID is the synthetic task satisfied by attaching a photo.
	SelfieTaskID = "selfie"

	// DefaultGraceWindow is how long after the last update a new calendar
	// date still counts as the same challenge day.
	DefaultGraceWindow = 2 * time.Hour
)

type Status string

const (
	StatusLocked     Status = "locked"
	StatusFailed     Status = "failed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusLocked, StatusFailed, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// HasHope reports whether a day with this status lets the attempt continue
// into the next day.
func (s Status) HasHope() bool {
	return s == StatusInProgress || s == StatusCompleted
}

func ParseStatus(input string) (Status, error) {
	s := Status(strings.TrimSpace(strings.ToLower(input)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid day status: %q", input)
	}
	return s, nil
}

// DayRecord is the persisted state of one day of one attempt.
type DayRecord struct {
	AttemptNumber    int
	DayNumber        int
	Status           Status
	TotalTasks       int
	CompletedTaskIDs []string
	Score            int
	Timestamp        *time.Time

	SelfiePath string
	SelfieNote string
}

// HasTask reports whether id is among the completed tasks.
func (d DayRecord) HasTask(id string) bool {
	for _, t := range d.CompletedTaskIDs {
		if t == id {
			return true
		}
	}
	return false
}

// Task is one entry of the daily task catalog.
type Task struct {
	ID   string
	Name string
}

// ScoreSubmission is what gets reported once an attempt is completed.
type ScoreSubmission struct {
	UserID     string
	UserName   string
	TotalScore int
}

// OutcomeKind tags the result of one engine evaluation.
type OutcomeKind int

const (
	OutcomeUnchanged OutcomeKind = iota
	OutcomeAdvance
	OutcomeAttemptFailed
	OutcomeChallengeFinished
)

var outcomeNames = []string{"unchanged", "advance", "attempt_failed", "challenge_finished"}

func (k OutcomeKind) String() string {
	if int(k) < 0 || int(k) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(k))
	}
	return outcomeNames[k]
}

// Outcome is the decision of the engine. Writes lists the records the
// caller must upsert to apply it.
type Outcome struct {
	Kind       OutcomeKind
	CurrentDay int
	Writes     []DayRecord
}
