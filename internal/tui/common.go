package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sadopc/hard75/internal/challenge"
)

// viewState represents the currently active view.
type viewState int

const (
	viewChallenge viewState = iota
	viewTasks
	viewHistory
	viewGallery
	viewLeaderboard
)

var viewNames = []string{"Challenge", "Tasks", "History", "Gallery", "Leaderboard"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

// tickMsg asks the app to evaluate the challenge against the clock.
type tickMsg time.Time

type evaluatedMsg struct {
	outcome challenge.Outcome
	err     error
}

// challengeChangedMsg is sent after any write to the active attempt.
type challengeChangedMsg struct{}

type tasksChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func statusLabel(s challenge.Status) string {
	switch s {
	case challenge.StatusCompleted:
		return "completed"
	case challenge.StatusInProgress:
		return "in progress"
	case challenge.StatusFailed:
		return "failed"
	default:
		return "locked"
	}
}

// ago renders a timestamp relative to now, or "never".
func ago(t *time.Time, now time.Time) string {
	if t == nil {
		return "never"
	}
	return humanize.RelTime(*t, now, "ago", "from now")
}

func progressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	filled := min(width, done*width/total)
	bar := successStyle.Render(strings.Repeat("█", filled)) + mutedStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %d/%d", bar, done, total)
}

// expandHome resolves a leading ~ in paths typed into forms.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
