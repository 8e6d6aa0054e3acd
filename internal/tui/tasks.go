package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/sadopc/hard75/internal/store"
)

type tasksModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	tasks  []store.TaskRow
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formName *string
}

func newTasksModel(s *store.Store, now func() time.Time) tasksModel {
	name := ""
	return tasksModel{
		store:    s,
		now:      now,
		formName: &name,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type tasksDataMsg struct {
	tasks []store.TaskRow
}

func (t tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, _ := t.store.ListTaskRows()
		return tasksDataMsg{tasks: tasks}
	}
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		t.tasks = msg.tasks
		if t.cursor >= len(t.tasks) {
			t.cursor = max(0, len(t.tasks)-1)
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.tasks)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.New):
			return t.showNewTaskForm()
		case key.Matches(msg, keys.Delete):
			if len(t.tasks) > 0 {
				return t, t.deleteTask(t.tasks[t.cursor])
			}
		}
	}
	return t, nil
}

func (t tasksModel) deleteTask(task store.TaskRow) tea.Cmd {
	s := t.store
	return func() tea.Msg {
		if err := s.DeleteTask(task.ID); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return tasksChangedMsg{}
	}
}

func (t tasksModel) addTask(name string) tea.Cmd {
	s := t.store
	return func() tea.Msg {
		if _, err := s.AddTask(name); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return tasksChangedMsg{}
	}
}

func (t tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*t.formName = ""

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task Name").
				Placeholder("Drink a gallon of water").
				Value(t.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		if name := strings.TrimSpace(*t.formName); name != "" {
			return t, t.addTask(name)
		}
		return t, nil
	}

	return t, cmd
}

func (t tasksModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Task"), "", t.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Daily Tasks")
	if len(t.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, subtitleStyle.Render("Changes apply from the next day that unlocks."))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-32s %s", "#", "Name", "Added")))

	for i, task := range t.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		added := humanize.RelTime(task.CreatedAt, t.now(), "ago", "from now")
		if task.CreatedAt.IsZero() {
			added = "built in"
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-3d %-32s", cursor, i+1, task.Name))+mutedStyle.Render(added))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
