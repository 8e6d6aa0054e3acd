package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/hard75/internal/store"
)

type galleryModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	groups []store.SelfieGroup
	offset int // first visible line
}

func newGalleryModel(s *store.Store, now func() time.Time) galleryModel {
	return galleryModel{store: s, now: now}
}

func (g *galleryModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

type galleryDataMsg struct {
	groups []store.SelfieGroup
}

func (g galleryModel) refresh() tea.Cmd {
	return func() tea.Msg {
		groups, _ := g.store.ListSelfieDays()
		return galleryDataMsg{groups: groups}
	}
}

func (g galleryModel) update(msg tea.Msg) (galleryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case galleryDataMsg:
		g.groups = msg.groups
		g.offset = 0
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if g.offset > 0 {
				g.offset--
			}
		case key.Matches(msg, keys.Down):
			if g.offset < len(g.lines())-1 {
				g.offset++
			}
		}
	}
	return g, nil
}

func (g galleryModel) lines() []string {
	var lines []string
	for _, grp := range g.groups {
		lines = append(lines, accentStyle.Render(fmt.Sprintf("Attempt %d", grp.Attempt))+
			mutedStyle.Render(fmt.Sprintf("  %d photos", len(grp.Days))))
		for _, d := range grp.Days {
			line := fmt.Sprintf("  Day %-3d %s", d.DayNumber, highlightStyle.Render(filepath.Base(d.SelfiePath)))
			if d.SelfieNote != "" {
				line += "  " + normalItemStyle.Render(d.SelfieNote)
			}
			line += "  " + mutedStyle.Render(ago(d.Timestamp, g.now()))
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}
	return lines
}

func (g galleryModel) view() string {
	w := g.width - 4
	title := titleStyle.Render("Selfie Gallery")

	if len(g.groups) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No selfies yet. Press p on the challenge tab to add one."),
		))
	}

	lines := g.lines()
	visible := max(g.height-8, 5)
	end := min(g.offset+visible, len(lines))

	rows := []string{title, ""}
	rows = append(rows, lines[g.offset:end]...)
	rows = append(rows, mutedStyle.Render("  ↑/↓: scroll"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
