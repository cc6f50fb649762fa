package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmViewModel is a yes/no dialog.
type ConfirmViewModel struct {
	active      bool
	width       int
	height      int
	title       string
	body        string
	selectedIdx int
}

func NewConfirmView() *ConfirmViewModel {
	return &ConfirmViewModel{}
}

func (m *ConfirmViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Activate opens the dialog with "No" preselected.
func (m *ConfirmViewModel) Activate(title, body string) {
	m.active = true
	m.title = title
	m.body = body
	m.selectedIdx = 1
}

func (m *ConfirmViewModel) Deactivate() {
	m.active = false
	m.title = ""
	m.body = ""
}

func (m *ConfirmViewModel) IsActive() bool {
	return m.active
}

func (m *ConfirmViewModel) Title() string {
	return m.title
}

func (m *ConfirmViewModel) Confirmed() bool {
	return m.selectedIdx == 0
}

func (m *ConfirmViewModel) Toggle() {
	m.selectedIdx = 1 - m.selectedIdx
}

func (m *ConfirmViewModel) View() string {
	if !m.active {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF453A")).
		Bold(true).
		Padding(1, 0)

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	if m.body != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Render(m.body))
		b.WriteString("\n\n")
	}

	selected := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#30D158")).
		Bold(true).
		Padding(0, 2)
	unselected := lipgloss.NewStyle().
		Foreground(lipgloss.Color("246")).
		Padding(0, 2)

	options := []string{"Yes", "No"}
	var buttons []string
	for i, opt := range options {
		if i == m.selectedIdx {
			buttons = append(buttons, selected.Render(opt))
		} else {
			buttons = append(buttons, unselected.Render(opt))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	b.WriteString("\n\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)
	b.WriteString(helpStyle.Render("←→: Choose | y/n | Enter: Confirm | Esc: Cancel"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#FF453A")).
		Padding(1, 2).
		Width(minInt(60, maxInt(20, m.width-4)))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(b.String()))
}
