package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dreamswag/ci5dev/internal/logger"
)

// LogsViewModel pages through the in-memory log buffer. With errorsOnly
// set, only [ERROR] entries are listed.
type LogsViewModel struct {
	width      int
	height     int
	offset     int
	active     bool
	errorsOnly bool
	logs       []logger.LogEntry
}

func NewLogsView() *LogsViewModel {
	return &LogsViewModel{}
}

func (m *LogsViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *LogsViewModel) Activate() {
	m.active = true
	m.load()
}

func (m *LogsViewModel) Deactivate() {
	m.active = false
	m.offset = 0
}

func (m *LogsViewModel) IsActive() bool {
	return m.active
}

func (m *LogsViewModel) ErrorsOnly() bool {
	return m.errorsOnly
}

func (m *LogsViewModel) Entries() []logger.LogEntry {
	return m.logs
}

func (m *LogsViewModel) load() {
	all := logger.GetLogs()
	if m.errorsOnly {
		filtered := all[:0]
		for _, e := range all {
			if strings.HasPrefix(e.Message, "[ERROR]") {
				filtered = append(filtered, e)
			}
		}
		all = filtered
	}
	m.logs = all
	m.offset = m.maxOffset()
}

func (m *LogsViewModel) visibleLines() int {
	return maxInt(1, m.height-8)
}

func (m *LogsViewModel) maxOffset() int {
	return maxInt(0, len(m.logs)-m.visibleLines())
}

func (m *LogsViewModel) Update(msg tea.Msg) tea.Cmd {
	if !m.active {
		return nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "up", "k":
		m.offset--
	case "down", "j":
		m.offset++
	case "pgup":
		m.offset -= m.visibleLines()
	case "pgdown":
		m.offset += m.visibleLines()
	case "g", "home":
		m.offset = 0
	case "G", "end":
		m.offset = m.maxOffset()
	case "e":
		m.errorsOnly = !m.errorsOnly
		m.load()
	case "r":
		m.load()
	}
	m.offset = clamp(m.offset, 0, m.maxOffset())

	return nil
}

func logColor(message string) lipgloss.Color {
	switch {
	case strings.HasPrefix(message, "[ERROR]"):
		return lipgloss.Color("#FF453A")
	case strings.HasPrefix(message, "[FILE_WRITE]"):
		return lipgloss.Color("#FF9F0A")
	case strings.HasPrefix(message, "[FILE_OPEN]"):
		return lipgloss.Color("#30D158")
	default:
		return lipgloss.Color("#E5E7EB")
	}
}

func (m *LogsViewModel) View() string {
	if !m.active {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0A84FF")).
		Bold(true).
		Padding(1, 0)

	title := fmt.Sprintf("Session Logs (%d entries)", len(m.logs))
	if m.errorsOnly {
		title += " · errors only"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.logs) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)
		b.WriteString(emptyStyle.Render("No logs yet"))
	} else {
		end := minInt(m.offset+m.visibleLines(), len(m.logs))
		for _, entry := range m.logs[m.offset:end] {
			line := fmt.Sprintf("[%s] %s", entry.Timestamp.Format("15:04:05.000"), entry.Message)
			b.WriteString(lipgloss.NewStyle().Foreground(logColor(entry.Message)).Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)

	scrollInfo := ""
	if len(m.logs) > m.visibleLines() {
		scrollInfo = fmt.Sprintf(" | Showing %d-%d of %d", m.offset+1, minInt(m.offset+m.visibleLines(), len(m.logs)), len(m.logs))
	}

	b.WriteString(helpStyle.Render("j/k: Scroll | g/G: Top/Bottom | e: Errors only | r: Refresh | Esc: Close" + scrollInfo))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#0A84FF")).
		Padding(1, 2).
		Width(maxInt(20, m.width-4))

	return boxStyle.Render(b.String())
}
