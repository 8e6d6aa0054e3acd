package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hard75/internal/challenge"
	"github.com/sadopc/hard75/internal/photo"
)

const gridColumns = 15

type todayModel struct {
	mgr      *challenge.Manager
	now      func() time.Time
	photoDir string
	width    int
	height   int

	state   challenge.State
	days    []challenge.DayRecord
	catalog []challenge.Task
	cursor  int
	loadErr error

	formActive bool
	form       *huh.Form
	formType   string // "selfie", "restart"

	// Form field pointers (survive value copies)
	formPath    *string
	formNote    *string
	formConfirm *bool
}

func newTodayModel(m *challenge.Manager, now func() time.Time, photoDir string) todayModel {
	path, note, confirm := "", "", false
	return todayModel{
		mgr:         m,
		now:         now,
		photoDir:    photoDir,
		formPath:    &path,
		formNote:    &note,
		formConfirm: &confirm,
	}
}

func (d *todayModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type todayDataMsg struct {
	state   challenge.State
	days    []challenge.DayRecord
	catalog []challenge.Task
	err     error
}

func (d todayModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		days, err := d.mgr.Days(ctx)
		if err != nil {
			return todayDataMsg{err: err}
		}
		catalog, err := d.mgr.Catalog()
		if err != nil {
			return todayDataMsg{err: err}
		}
		return todayDataMsg{state: d.mgr.State(), days: days, catalog: catalog}
	}
}

// today returns the record of the current day, if loaded.
func (d todayModel) today() *challenge.DayRecord {
	for i := range d.days {
		if d.days[i].DayNumber == d.state.CurrentDay {
			return &d.days[i]
		}
	}
	return nil
}

func (d todayModel) summary() challenge.Summary {
	return challenge.Summarize(d.state, d.days)
}

func (d todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	if d.formActive && d.form != nil {
		return d.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todayDataMsg:
		d.loadErr = msg.err
		if msg.err == nil {
			d.state = msg.state
			d.days = msg.days
			d.catalog = msg.catalog
		}
		if d.cursor >= len(d.catalog) {
			d.cursor = max(0, len(d.catalog)-1)
		}
		return d, nil

	case tea.KeyMsg:
		return d.updateKeys(msg)
	}
	return d, nil
}

func (d todayModel) updateKeys(msg tea.KeyMsg) (todayModel, tea.Cmd) {
	if !d.state.Started {
		if len(d.days) == 0 && key.Matches(msg, keys.Start, keys.Enter) {
			return d, d.startAttempt(true)
		}
		return d, nil
	}
	if d.state.HasFailed {
		if key.Matches(msg, keys.Enter, keys.Start) {
			return d, d.dismissFailure()
		}
		return d, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if d.cursor > 0 {
			d.cursor--
		}
	case key.Matches(msg, keys.Down):
		if d.cursor < len(d.catalog)-1 {
			d.cursor++
		}
	case key.Matches(msg, keys.Toggle, keys.Enter):
		if d.state.Finished || len(d.catalog) == 0 {
			return d, nil
		}
		task := d.catalog[d.cursor]
		if task.ID == challenge.SelfieTaskID {
			return d.showSelfieForm()
		}
		return d, d.toggle(task.ID)
	case key.Matches(msg, keys.Selfie):
		if !d.state.Finished {
			return d.showSelfieForm()
		}
	case key.Matches(msg, keys.Restart):
		return d.showRestartForm()
	}
	return d, nil
}

func (d todayModel) startAttempt(firstEver bool) tea.Cmd {
	m := d.mgr
	return func() tea.Msg {
		if err := m.StartAttempt(context.Background(), firstEver); err != nil {
			return statusMsg{text: fmt.Sprintf("Start failed: %v", err), isError: true}
		}
		return challengeChangedMsg{}
	}
}

func (d todayModel) dismissFailure() tea.Cmd {
	m := d.mgr
	return func() tea.Msg {
		if err := m.DismissFailure(context.Background()); err != nil {
			return statusMsg{text: fmt.Sprintf("Restart failed: %v", err), isError: true}
		}
		return challengeChangedMsg{}
	}
}

func (d todayModel) toggle(taskID string) tea.Cmd {
	m := d.mgr
	return func() tea.Msg {
		_, err := m.ToggleTask(context.Background(), taskID)
		return editResult("Update failed", err)
	}
}

// editResult refreshes the view when an edit was refused because the
// calendar moved on, so the failure dialog or finished banner shows.
func editResult(prefix string, err error) tea.Msg {
	switch {
	case err == nil, calendarMoved(err):
		return challengeChangedMsg{}
	default:
		return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
	}
}

func calendarMoved(err error) bool {
	return errors.Is(err, challenge.ErrAttemptFailed) || errors.Is(err, challenge.ErrDayClosed)
}

func (d todayModel) attachSelfie(src, note string) tea.Cmd {
	m, dir := d.mgr, d.photoDir
	return func() tea.Msg {
		path, err := photo.Import(dir, src)
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		_, err = m.AttachSelfie(context.Background(), path, note)
		if err != nil {
			os.Remove(path)
		}
		return editResult("Selfie failed", err)
	}
}

func (d todayModel) showSelfieForm() (todayModel, tea.Cmd) {
	*d.formPath = ""
	*d.formNote = ""
	d.formType = "selfie"

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Photo file").Placeholder("~/Pictures/today.jpg").Value(d.formPath),
			huh.NewInput().Title("Note").Value(d.formNote),
		),
	).WithShowHelp(true).WithShowErrors(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d todayModel) showRestartForm() (todayModel, tea.Cmd) {
	*d.formConfirm = false
	d.formType = "restart"

	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Abandon attempt %d and start over from day 1?", d.state.Attempt)).
				Affirmative("Start over").
				Negative("Keep going").
				Value(d.formConfirm),
		),
	).WithShowHelp(true)

	d.formActive = true
	return d, d.form.Init()
}

func (d todayModel) updateForm(msg tea.Msg) (todayModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			d.formActive = false
			d.form = nil
			return d, nil
		}
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	if d.form.State == huh.StateCompleted {
		d.formActive = false
		switch d.formType {
		case "selfie":
			if src := expandHome(strings.TrimSpace(*d.formPath)); src != "" {
				return d, d.attachSelfie(src, strings.TrimSpace(*d.formNote))
			}
		case "restart":
			if *d.formConfirm {
				return d, d.startAttempt(false)
			}
		}
		return d, nil
	}

	return d, cmd
}

func (d todayModel) view() string {
	w := d.width - 4

	if d.formActive && d.form != nil {
		title := titleStyle.Render("Attach Selfie")
		if d.formType == "restart" {
			title = titleStyle.Render("Restart Challenge")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", d.form.View()))
	}

	if d.loadErr != nil {
		return alertPanelStyle.Width(w).Render(errorStyle.Render("Could not load challenge: " + d.loadErr.Error()))
	}

	if !d.state.Started && len(d.days) > 0 {
		return panelStyle.Width(w).Render(mutedStyle.Render("Checking the calendar..."))
	}
	if !d.state.Started {
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			dayCounterStyle.Render("75 HARD"),
			"",
			normalItemStyle.Render("75 days. Every task, every day. Miss one and you start over."),
			"",
			mutedStyle.Render("Press s to start day 1."),
		))
	}

	var sections []string
	sections = append(sections, d.renderHeadline())
	if d.state.HasFailed {
		sections = append(sections, d.renderFailure())
	} else if d.state.Finished {
		sections = append(sections, d.renderFinished())
	}
	sections = append(sections, "", d.renderGrid())
	if !d.state.HasFailed && !d.state.Finished {
		sections = append(sections, "", d.renderChecklist())
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (d todayModel) renderHeadline() string {
	s := d.summary()
	counter := dayCounterStyle.Render(fmt.Sprintf("Day %d / %d", s.CurrentDay, challenge.TotalDays))
	var updated string
	if t := d.today(); t != nil {
		updated = "updated " + ago(t.Timestamp, d.now())
	}
	info := mutedStyle.Render(fmt.Sprintf("attempt %d · %d pts · streak %d · %s", s.Attempt, s.TotalScore, s.Streak, updated))
	return lipgloss.JoinHorizontal(lipgloss.Bottom, counter, "   ", info)
}

func (d todayModel) renderFailure() string {
	return alertPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Bold(true).Render(fmt.Sprintf("Attempt %d is over.", d.state.Attempt)),
		normalItemStyle.Render(fmt.Sprintf("Day %d was missed. The challenge starts again from day 1.", d.state.CurrentDay)),
		"",
		mutedStyle.Render("enter: start the next attempt"),
	))
}

func (d todayModel) renderFinished() string {
	return activePanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		successStyle.Bold(true).Render("All 75 days done!"),
		normalItemStyle.Render(fmt.Sprintf("Final score: %d points", d.summary().TotalScore)),
		"",
		mutedStyle.Render("R: start a new attempt"),
	))
}

func (d todayModel) renderGrid() string {
	status := make(map[int]challenge.Status, len(d.days))
	for _, day := range d.days {
		status[day.DayNumber] = day.Status
	}

	var rows []string
	var cells []string
	for n := 1; n <= challenge.TotalDays; n++ {
		st, ok := status[n]
		if !ok {
			st = challenge.StatusLocked
		}
		style := lipgloss.NewStyle().Foreground(statusColor(st))
		if n == d.state.CurrentDay {
			style = style.Bold(true).Underline(true)
		}
		cells = append(cells, style.Render(fmt.Sprintf("%3d", n)))
		if n%gridColumns == 0 {
			rows = append(rows, strings.Join(cells, " "))
			cells = nil
		}
	}
	if len(cells) > 0 {
		rows = append(rows, strings.Join(cells, " "))
	}

	legend := fmt.Sprintf("%s %s  %s %s  %s %s  %s %s",
		successStyle.Render("●"), "completed",
		warningStyle.Render("●"), "in progress",
		errorStyle.Render("●"), "failed",
		lipgloss.NewStyle().Foreground(colorSubtle).Render("●"), "locked",
	)
	rows = append(rows, "", mutedStyle.Render(legend))
	return strings.Join(rows, "\n")
}

func (d todayModel) renderChecklist() string {
	today := d.today()
	var rows []string
	rows = append(rows, titleStyle.Render("Today"))

	if len(d.catalog) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks. Press 2 to add some."))
		return strings.Join(rows, "\n")
	}

	done := 0
	for i, task := range d.catalog {
		checked := today != nil && today.HasTask(task.ID)
		if checked {
			done++
		}
		box := "[ ]"
		if checked {
			box = successStyle.Render("[x]")
		}
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, cursor+box+" "+style.Render(task.Name))
	}

	rows = append(rows, "", "  "+progressBar(done, len(d.catalog), 30))
	if today != nil && today.SelfiePath != "" {
		line := "  selfie: " + today.SelfiePath
		if today.SelfieNote != "" {
			line += " · " + today.SelfieNote
		}
		rows = append(rows, mutedStyle.Render(line))
	}
	rows = append(rows, "", mutedStyle.Render("  space: toggle  p: selfie  R: restart  c: copy progress"))
	return strings.Join(rows, "\n")
}
