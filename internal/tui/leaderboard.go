package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/hard75/internal/store"
)

const leaderboardLimit = 20

// Board is where the ranking comes from: the local database or a remote
// leaderboard server.
type Board interface {
	Fetch(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)
}

type leaderboardModel struct {
	board  Board
	userID string
	now    func() time.Time
	width  int
	height int

	entries []store.LeaderboardEntry
	loading bool
	err     error
}

func newLeaderboardModel(b Board, userID string, now func() time.Time) leaderboardModel {
	return leaderboardModel{board: b, userID: userID, now: now}
}

func (l *leaderboardModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

type leaderboardDataMsg struct {
	entries []store.LeaderboardEntry
	err     error
}

func (l leaderboardModel) refresh() tea.Cmd {
	if l.board == nil {
		return nil
	}
	b := l.board
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		entries, err := b.Fetch(ctx, leaderboardLimit)
		return leaderboardDataMsg{entries: entries, err: err}
	}
}

func (l leaderboardModel) update(msg tea.Msg) (leaderboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case leaderboardDataMsg:
		l.loading = false
		l.err = msg.err
		if msg.err == nil {
			l.entries = msg.entries
		}
	case tea.KeyMsg:
		if key.Matches(msg, keys.Refresh) {
			l.loading = true
			return l, l.refresh()
		}
	}
	return l, nil
}

func (l leaderboardModel) view() string {
	w := l.width - 4
	title := titleStyle.Render("Leaderboard")

	var rows []string
	rows = append(rows, title, "")

	switch {
	case l.board == nil:
		rows = append(rows, mutedStyle.Render("Leaderboard is not configured."))
	case l.err != nil:
		rows = append(rows, errorStyle.Render("Could not load leaderboard: "+l.err.Error()))
	case l.loading && len(l.entries) == 0:
		rows = append(rows, mutedStyle.Render("Loading..."))
	case len(l.entries) == 0:
		rows = append(rows, mutedStyle.Render("Nobody has finished yet. Be the first."))
	default:
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-4s %-24s %8s  %s", "#", "Name", "Score", "Finished")))
		rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))
		for i, e := range l.entries {
			style := normalItemStyle
			marker := "  "
			if e.UserID == l.userID {
				style = selectedItemStyle
				marker = "* "
			}
			row := style.Render(fmt.Sprintf("%s%-4d %-24s %8s", marker, i+1, e.UserName, humanize.Comma(int64(e.TotalScore))))
			rows = append(rows, row+"  "+mutedStyle.Render(humanize.RelTime(e.CompletedAt, l.now(), "ago", "from now")))
		}
	}

	rows = append(rows, "", mutedStyle.Render("  r: refresh"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
