package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/telemetry"
)

// SignalsViewModel lists every telemetry report behind a summary.
type SignalsViewModel struct {
	viewport viewport.Model
	summary  domain.SignalSummary
	width    int
	height   int
	active   bool
}

func NewSignalsView() *SignalsViewModel {
	return &SignalsViewModel{viewport: viewport.New(0, 0)}
}

func (m *SignalsViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = maxInt(1, height-10)
}

func (m *SignalsViewModel) Activate(summary domain.SignalSummary) {
	m.active = true
	m.summary = summary
	m.viewport.GotoTop()
	m.updateViewport()
}

func (m *SignalsViewModel) Deactivate() {
	m.active = false
}

func (m *SignalsViewModel) IsActive() bool {
	return m.active
}

func (m *SignalsViewModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *SignalsViewModel) View() string {
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("\nj/k: Scroll | o: Open newest report | q/Esc: Back")

	return m.viewport.View() + "\n" + help
}

// Newest returns the most recent report, if any.
func (m *SignalsViewModel) Newest() *domain.TelemetrySignal {
	signals := m.sorted()
	if len(signals) == 0 {
		return nil
	}
	return &signals[0]
}

func (m *SignalsViewModel) sorted() []domain.TelemetrySignal {
	out := append([]domain.TelemetrySignal(nil), m.summary.Signals...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *SignalsViewModel) updateViewport() {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30D158")).
		Bold(true).
		Padding(1, 0)

	b.WriteString(titleStyle.Render(fmt.Sprintf("Signals for %s (%d)", m.summary.Cork, m.summary.Count)))
	b.WriteString("\n\n")

	value, caption := telemetry.Headline(m.summary)
	headlineStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB")).
		Bold(true)
	b.WriteString(headlineStyle.Render(value) + "  " + caption)
	b.WriteString("\n\n")

	if len(m.summary.Signals) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true)
		if m.summary.NoSignal {
			b.WriteString(emptyStyle.Render("The telemetry tracker could not be reached."))
		} else {
			b.WriteString(emptyStyle.Render("No one has reported on this cork yet."))
		}
		m.viewport.SetContent(b.String())
		return
	}

	for _, s := range m.sorted() {
		m.renderSignal(&b, s)
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}

func (m *SignalsViewModel) renderSignal(b *strings.Builder, s domain.TelemetrySignal) {
	authorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#0A84FF")).
		Bold(true)
	metaStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)
	statusStyle := lipgloss.NewStyle().
		Foreground(statusColor(domain.SignalStatus(s.Status))).
		Bold(true)
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#374151")).
		Padding(0, 2).
		Width(maxInt(20, m.width-4))

	var content strings.Builder
	content.WriteString(authorStyle.Render("@" + s.Author))
	if !s.CreatedAt.IsZero() {
		content.WriteString(metaStyle.Render(" · " + s.CreatedAt.Format("2006-01-02 15:04")))
	}
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("RAM %dMB  ", s.RAMMB))
	content.WriteString(statusStyle.Render(s.Status))
	if s.URL != "" {
		content.WriteString("\n")
		content.WriteString(metaStyle.Render(s.URL))
	}

	b.WriteString(boxStyle.Render(content.String()))
}
