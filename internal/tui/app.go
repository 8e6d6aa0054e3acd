package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hard75/internal/challenge"
	"github.com/sadopc/hard75/internal/export"
	"github.com/sadopc/hard75/internal/store"
)

var exportFormats = []string{"csv", "json", "yaml"}

// Deps is everything the TUI needs from the outside.
type Deps struct {
	Manager *challenge.Manager
	Store   *store.Store
	Board   Board // nil hides the ranking
	UserID  string

	// CheckInterval is how often the calendar is re-evaluated.
	CheckInterval time.Duration
	PhotoDir      string
	ExportDir     string
	Clock         func() time.Time
	Logger        *slog.Logger
}

// App is the root Bubble Tea model.
type App struct {
	mgr      *challenge.Manager
	store    *store.Store
	now      func() time.Time
	log      *slog.Logger
	interval time.Duration
	exportTo string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	today       todayModel
	tasks       tasksModel
	history     historyModel
	gallery     galleryModel
	leaderboard leaderboardModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.CheckInterval <= 0 {
		d.CheckInterval = time.Minute
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.ExportDir == "" {
		d.ExportDir, _ = os.UserHomeDir()
	}

	return App{
		mgr:         d.Manager,
		store:       d.Store,
		now:         d.Clock,
		log:         d.Logger,
		interval:    d.CheckInterval,
		exportTo:    d.ExportDir,
		activeView:  viewChallenge,
		today:       newTodayModel(d.Manager, d.Clock, d.PhotoDir),
		tasks:       newTasksModel(d.Store, d.Clock),
		history:     newHistoryModel(d.Store),
		gallery:     newGalleryModel(d.Store, d.Clock),
		leaderboard: newLeaderboardModel(d.Board, d.UserID, d.Clock),
		help:        h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.evaluate(),
		a.tickCmd(),
	)
}

func (a App) tickCmd() tea.Cmd {
	return tea.Tick(a.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// evaluate runs the day engine against the clock.
func (a App) evaluate() tea.Cmd {
	m, now := a.mgr, a.now
	return func() tea.Msg {
		out, err := m.Evaluate(context.Background(), now())
		return evaluatedMsg{outcome: out, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.today.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.gallery.setSize(a.width, contentHeight)
		a.leaderboard.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A form in a child view captures all keys.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Copy):
			return a, a.copyProgress()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewChallenge)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewHistory)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewGallery)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewLeaderboard)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		return a, tea.Batch(a.tickCmd(), a.evaluate())

	case evaluatedMsg:
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("Evaluation failed: %v", msg.err), true)
		} else {
			switch msg.outcome.Kind {
			case challenge.OutcomeAdvance:
				a.setStatus(fmt.Sprintf("Day %d unlocked", msg.outcome.CurrentDay), false)
			case challenge.OutcomeAttemptFailed:
				a.setStatus(fmt.Sprintf("Day %d was missed", msg.outcome.CurrentDay), true)
			}
		}
		return a, tea.Batch(a.today.refresh(), a.history.refresh())

	case challengeChangedMsg:
		return a, tea.Batch(a.today.refresh(), a.history.refresh(), a.gallery.refresh(), a.leaderboard.refresh())

	case tasksChangedMsg:
		return a, tea.Batch(a.tasks.refresh(), a.today.refresh())

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil

	// Data messages always reach their view, whichever tab is active.
	case todayDataMsg:
		var cmd tea.Cmd
		a.today, cmd = a.today.update(msg)
		return a, cmd
	case tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd
	case historyDataMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.update(msg)
		return a, cmd
	case galleryDataMsg:
		var cmd tea.Cmd
		a.gallery, cmd = a.gallery.update(msg)
		return a, cmd
	case leaderboardDataMsg:
		var cmd tea.Cmd
		a.leaderboard, cmd = a.leaderboard.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusError = isError
	if isError {
		a.log.Warn("tui", "status", text)
	}
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewChallenge:
		a.today, cmd = a.today.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewGallery:
		a.gallery, cmd = a.gallery.update(msg)
	case viewLeaderboard:
		a.leaderboard, cmd = a.leaderboard.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewChallenge:
		return a.today.formActive
	case viewTasks:
		return a.tasks.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewChallenge:
		return a.today.refresh()
	case viewTasks:
		return a.tasks.refresh()
	case viewHistory:
		return a.history.refresh()
	case viewGallery:
		return a.gallery.refresh()
	case viewLeaderboard:
		return a.leaderboard.refresh()
	}
	return nil
}

func (a App) copyProgress() tea.Cmd {
	text := a.today.summary().String()
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg{text: fmt.Sprintf("Clipboard unavailable: %v", err), isError: true}
		}
		return statusMsg{text: "Progress copied to clipboard"}
	}
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewChallenge:
		content = a.today.view()
	case viewTasks:
		content = a.tasks.view()
	case viewHistory:
		content = a.history.view()
	case viewGallery:
		content = a.gallery.view()
	case viewLeaderboard:
		content = a.leaderboard.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("hard75")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusError {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	dayInfo := ""
	if st := a.today.state; st.Started {
		dayInfo = highlightStyle.Render(fmt.Sprintf(" ● day %d/%d", st.CurrentDay, challenge.TotalDays))
		if st.HasFailed {
			dayInfo = errorStyle.Render(fmt.Sprintf(" ✗ attempt %d failed", st.Attempt))
		}
	}

	left := footerStyle.Render(helpView)
	right := dayInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export Format"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportFormats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format string) tea.Cmd {
	s, dir, now := a.store, a.exportTo, a.now
	return func() tea.Msg {
		days, err := s.ListAllDays()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		names, err := taskNames(s)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		path := filepath.Join(dir, fmt.Sprintf("hard75-export-%s.%s", now().Format("2006-01-02"), format))
		if err := export.Write(format, days, names, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

// taskNames maps task ids to display names, including the selfie task.
func taskNames(s *store.Store) (map[string]string, error) {
	tasks, err := s.ListTasks()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(tasks)+1)
	for _, t := range challenge.WithSelfie(tasks) {
		names[t.ID] = t.Name
	}
	return names, nil
}
