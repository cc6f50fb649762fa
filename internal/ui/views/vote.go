package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dreamswag/ci5dev/internal/domain"
)

var voteStatuses = []domain.SignalStatus{
	domain.SignalStable,
	domain.SignalUnstable,
	domain.SignalBroken,
}

// VoteViewModel collects one telemetry reading for a cork.
type VoteViewModel struct {
	ramInput  textinput.Model
	statusIdx int
	cork      string
	width     int
	height    int
	active    bool
}

func NewVoteView() *VoteViewModel {
	ti := textinput.New()
	ti.Placeholder = "Observed RAM in MB"
	ti.CharLimit = 6

	return &VoteViewModel{ramInput: ti}
}

func (m *VoteViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *VoteViewModel) Activate(cork string) {
	m.active = true
	m.cork = cork
	m.statusIdx = 0
	m.ramInput.SetValue("")
	m.ramInput.Focus()
}

func (m *VoteViewModel) Deactivate() {
	m.active = false
	m.ramInput.Blur()
	m.ramInput.SetValue("")
}

func (m *VoteViewModel) IsActive() bool {
	return m.active
}

func (m *VoteViewModel) Cork() string {
	return m.cork
}

// RAM returns the typed reading, or 0 when nothing usable was entered.
func (m *VoteViewModel) RAM() int {
	n, err := strconv.Atoi(strings.TrimSpace(m.ramInput.Value()))
	if err != nil {
		return 0
	}
	return n
}

func (m *VoteViewModel) SetRAM(value string) {
	m.ramInput.SetValue(value)
}

func (m *VoteViewModel) Status() domain.SignalStatus {
	return voteStatuses[m.statusIdx]
}

func (m *VoteViewModel) NextStatus() {
	m.statusIdx = (m.statusIdx + 1) % len(voteStatuses)
}

func (m *VoteViewModel) PrevStatus() {
	m.statusIdx = (m.statusIdx - 1 + len(voteStatuses)) % len(voteStatuses)
}

func (m *VoteViewModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "right":
			m.NextStatus()
			return nil
		case "shift+tab", "left":
			m.PrevStatus()
			return nil
		}
		if key.Type == tea.KeyRunes && !digitsOnly(key.Runes) {
			return nil
		}
	}

	var cmd tea.Cmd
	m.ramInput, cmd = m.ramInput.Update(msg)
	return cmd
}

func (m *VoteViewModel) View() string {
	if !m.active {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30D158")).
		Bold(true).
		Padding(1, 0)

	b.WriteString(titleStyle.Render("📡 Submit Signal - " + m.cork))
	b.WriteString("\n\n")
	b.WriteString("RAM (MB):\n")
	b.WriteString(m.ramInput.View())
	b.WriteString("\n\nStatus:\n")

	for i, status := range voteStatuses {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
		marker := "○"
		if i == m.statusIdx {
			style = lipgloss.NewStyle().Foreground(statusColor(status)).Bold(true)
			marker = "●"
		}
		b.WriteString(style.Render(fmt.Sprintf(" %s %s ", marker, status)))
	}
	b.WriteString("\n\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)
	b.WriteString(helpStyle.Render("←/→: Status | Ctrl+S: Verify and open issue | Esc: Cancel"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#30D158")).
		Padding(1, 2).
		Width(minInt(70, maxInt(20, m.width-4)))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(b.String()))
}

func digitsOnly(runes []rune) bool {
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func statusColor(s domain.SignalStatus) lipgloss.Color {
	switch s {
	case domain.SignalStable:
		return lipgloss.Color("#30D158")
	case domain.SignalUnstable:
		return lipgloss.Color("#FF9F0A")
	default:
		return lipgloss.Color("#FF453A")
	}
}
