package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hard75/internal/challenge"
	"github.com/sadopc/hard75/internal/store"
)

// daysPerPage is how many days one chart page shows.
const daysPerPage = 15

type attemptHistory struct {
	attempt   int
	days      []challenge.DayRecord
	completed int
	failed    bool
	score     int
}

type historyModel struct {
	store  *store.Store
	width  int
	height int

	attempts []attemptHistory
	selected int // index into attempts
	page     int

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, hh int) {
	h.width = w
	h.height = hh
	h.buildChart()
}

type historyDataMsg struct {
	attempts []attemptHistory
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		days, _ := h.store.ListAllDays()
		return historyDataMsg{attempts: groupAttempts(days)}
	}
}

// groupAttempts splits records by attempt, newest attempt first.
func groupAttempts(days []challenge.DayRecord) []attemptHistory {
	byAttempt := make(map[int]*attemptHistory)
	for _, d := range days {
		a, ok := byAttempt[d.AttemptNumber]
		if !ok {
			a = &attemptHistory{attempt: d.AttemptNumber}
			byAttempt[d.AttemptNumber] = a
		}
		a.days = append(a.days, d)
		a.score += d.Score
		switch {
		case d.Status == challenge.StatusCompleted:
			a.completed++
		case d.Status == challenge.StatusFailed && d.Timestamp != nil && d.DayNumber > 1:
			a.failed = true
		}
	}

	out := make([]attemptHistory, 0, len(byAttempt))
	for _, a := range byAttempt {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].attempt > out[j].attempt })
	return out
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		h.attempts = msg.attempts
		if h.selected >= len(h.attempts) {
			h.selected = 0
		}
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			if h.selected < len(h.attempts)-1 {
				h.selected++
				h.page = 0
			}
		case key.Matches(msg, keys.Right):
			if h.selected > 0 {
				h.selected--
				h.page = 0
			}
		case key.Matches(msg, keys.Up):
			if h.page > 0 {
				h.page--
			}
		case key.Matches(msg, keys.Down):
			if (h.page+1)*daysPerPage < challenge.TotalDays {
				h.page++
			}
		default:
			return h, nil
		}
		h.buildChart()
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := max(h.width-8, 20)
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}
	h.chart = barchart.New(chartWidth, chartHeight)
	if len(h.attempts) == 0 {
		return
	}

	byDay := make(map[int]challenge.DayRecord)
	for _, d := range h.attempts[h.selected].days {
		byDay[d.DayNumber] = d
	}

	first := h.page*daysPerPage + 1
	last := min(first+daysPerPage-1, challenge.TotalDays)
	var bars []barchart.BarData
	for n := first; n <= last; n++ {
		d, ok := byDay[n]
		st := challenge.StatusLocked
		if ok {
			st = d.Status
		}
		bars = append(bars, barchart.BarData{
			Label: fmt.Sprintf("%d", n),
			Values: []barchart.BarValue{{
				Name:  statusLabel(st),
				Value: float64(d.Score),
				Style: lipgloss.NewStyle().Foreground(statusColor(st)),
			}},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4
	title := titleStyle.Render("History")

	if len(h.attempts) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No attempts yet."),
		))
	}

	a := h.attempts[h.selected]
	first := h.page*daysPerPage + 1
	last := min(first+daysPerPage-1, challenge.TotalDays)
	label := mutedStyle.Render(fmt.Sprintf("attempt %d · days %d-%d · score per day", a.attempt, first, last))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", label)

	nav := mutedStyle.Render("  ←/→: attempt  ↑/↓: days")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", h.chart.View(), "", h.renderAttemptTable(w), "", nav,
		),
	)
}

func (h historyModel) renderAttemptTable(w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-8s %-12s %10s %8s", "Attempt", "Result", "Completed", "Score")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 42))))

	for i, a := range h.attempts {
		result := warningStyle.Render(fmt.Sprintf("%-12s", "active"))
		switch {
		case a.completed == challenge.TotalDays:
			result = successStyle.Render(fmt.Sprintf("%-12s", "finished"))
		case a.failed || i > 0:
			result = errorStyle.Render(fmt.Sprintf("%-12s", "failed"))
		}
		cursor := "  "
		if i == h.selected {
			cursor = "> "
		}
		rows = append(rows, fmt.Sprintf("%s%-8d %s %10s %8d",
			cursor, a.attempt, result, fmt.Sprintf("%d/%d", a.completed, challenge.TotalDays), a.score))
	}
	return strings.Join(rows, "\n")
}
