package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6C63FF"))
	goodStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F39C12"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E74C3C"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func labelValue(label string, value any) string {
	return mutedStyle.Render(fmt.Sprintf("%-12s", label+":")) + " " + fmt.Sprint(value)
}
