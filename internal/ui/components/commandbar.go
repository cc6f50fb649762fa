package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxHistory = 50

// CommandBarModel is the ":" prompt. Executed commands are kept in a
// short history that up/down walk through.
type CommandBarModel struct {
	textInput textinput.Model
	width     int
	active    bool
	history   []string
	histIdx   int
}

func NewCommandBar() *CommandBarModel {
	ti := textinput.New()
	ti.Placeholder = "Enter command..."
	ti.CharLimit = 256
	ti.Width = 50

	return &CommandBarModel{textInput: ti}
}

func (m *CommandBarModel) SetWidth(width int) {
	m.width = width
	if width > 10 {
		m.textInput.Width = width - 10
	}
}

func (m *CommandBarModel) Activate() {
	m.active = true
	m.histIdx = len(m.history)
	m.textInput.Focus()
	m.textInput.SetValue(":")
	m.textInput.CursorEnd()
}

func (m *CommandBarModel) Deactivate() {
	m.active = false
	m.textInput.Blur()
	m.textInput.SetValue("")
}

func (m *CommandBarModel) IsActive() bool {
	return m.active
}

func (m *CommandBarModel) Value() string {
	return m.textInput.Value()
}

// Remember appends an executed command to the history, skipping an
// immediate repeat.
func (m *CommandBarModel) Remember(input string) {
	if input == "" || input == ":" {
		return
	}
	if n := len(m.history); n > 0 && m.history[n-1] == input {
		return
	}
	m.history = append(m.history, input)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

func (m *CommandBarModel) History() []string {
	return append([]string(nil), m.history...)
}

func (m *CommandBarModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyUp:
			if m.histIdx > 0 {
				m.histIdx--
				m.textInput.SetValue(m.history[m.histIdx])
				m.textInput.CursorEnd()
			}
			return nil
		case tea.KeyDown:
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.textInput.SetValue(m.history[m.histIdx])
			} else {
				m.histIdx = len(m.history)
				m.textInput.SetValue(":")
			}
			m.textInput.CursorEnd()
			return nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return cmd
}

func (m *CommandBarModel) View() string {
	if !m.active {
		return ""
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB")).
		Background(lipgloss.Color("#1F2937")).
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(lipgloss.Color("#30D158")).
		Width(m.width)

	return style.Render(" " + m.textInput.View())
}
