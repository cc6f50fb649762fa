package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type MessageKind int

const (
	MessageInfo MessageKind = iota
	MessageSuccess
	MessageError
)

type StatusBarModel struct {
	width   int
	message string
	kind    MessageKind
}

func NewStatusBar() *StatusBarModel {
	return &StatusBarModel{}
}

func (m *StatusBarModel) SetWidth(width int) {
	m.width = width
}

func (m *StatusBarModel) SetMessage(message string, isError bool) {
	kind := MessageInfo
	if isError {
		kind = MessageError
	}
	m.Set(message, kind)
}

func (m *StatusBarModel) Set(message string, kind MessageKind) {
	m.message = message
	m.kind = kind
}

func (m *StatusBarModel) Message() string {
	return m.message
}

func (m *StatusBarModel) IsError() bool {
	return m.kind == MessageError
}

func (m *StatusBarModel) ClearMessage() {
	m.message = ""
	m.kind = MessageInfo
}

func (m *StatusBarModel) View() string {
	content := " " + m.message

	if m.width > 0 && lipgloss.Width(content) > m.width {
		content = truncate(content, m.width)
	} else if lipgloss.Width(content) < m.width {
		content += strings.Repeat(" ", m.width-lipgloss.Width(content))
	}

	bg := lipgloss.Color("#374151")
	switch m.kind {
	case MessageError:
		bg = lipgloss.Color("#FF453A")
	case MessageSuccess:
		bg = lipgloss.Color("#1E7A3A")
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB")).
		Background(bg).
		Width(m.width)

	return style.Render(content)
}
