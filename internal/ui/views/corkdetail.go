package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/render"
	"github.com/dreamswag/ci5dev/internal/telemetry"
	"github.com/dreamswag/ci5dev/internal/ui/markdown"
)

// Signal button captions, by how far the session is from being allowed
// to vote.
const (
	ButtonLogin  = "LOGIN TO VOTE"
	ButtonVerify = "VERIFY HARDWARE"
	ButtonSubmit = "SUBMIT SIGNAL"
)

// SignalButton picks the caption for the vote button.
func SignalButton(loggedIn, verified bool) string {
	switch {
	case !loggedIn:
		return ButtonLogin
	case !verified:
		return ButtonVerify
	default:
		return ButtonSubmit
	}
}

type CorkDetailViewModel struct {
	detail   *render.Detail
	summary  *domain.SignalSummary
	loading  bool
	loggedIn bool
	verified bool

	viewport viewport.Model
	md       *markdown.Renderer
	width    int
	height   int
}

func NewCorkDetailView() *CorkDetailViewModel {
	return &CorkDetailViewModel{
		viewport: viewport.New(0, 0),
		md:       markdown.NewRenderer(markdown.DefaultStyles()),
	}
}

func (m *CorkDetailViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = maxInt(1, height-10)
	m.md.SetWidth(width)
	m.updateViewport()
}

// SetDetail shows a new cork; its signals are fetched separately.
func (m *CorkDetailViewModel) SetDetail(d render.Detail) {
	m.detail = &d
	m.summary = nil
	m.loading = true
	m.viewport.GotoTop()
	m.updateViewport()
}

// SetSignals attaches the telemetry summary if it belongs to the cork on
// screen; a late answer for a cork the user already left is dropped.
func (m *CorkDetailViewModel) SetSignals(s domain.SignalSummary) {
	if m.detail == nil || m.detail.Key != s.Cork {
		return
	}
	m.summary = &s
	m.loading = false
	m.updateViewport()
}

func (m *CorkDetailViewModel) SetIdentity(loggedIn, verified bool) {
	m.loggedIn = loggedIn
	m.verified = verified
	m.updateViewport()
}

func (m *CorkDetailViewModel) GetDetail() *render.Detail {
	return m.detail
}

func (m *CorkDetailViewModel) GetSignals() *domain.SignalSummary {
	return m.summary
}

func (m *CorkDetailViewModel) ButtonText() string {
	return SignalButton(m.loggedIn, m.verified)
}

func (m *CorkDetailViewModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *CorkDetailViewModel) View() string {
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("\nv: Vote | t: Signals | c: Copy install | o: Open source | S: Submit cork | q: Back")

	return m.viewport.View() + "\n" + help
}

func (m *CorkDetailViewModel) updateViewport() {
	if m.detail == nil {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if desc := m.md.Render(m.detail.Description); desc != "" {
		b.WriteString(desc)
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderFacts())
	b.WriteString("\n\n")
	b.WriteString(m.renderSignalBox())

	m.viewport.SetContent(b.String())
}

func (m *CorkDetailViewModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB")).
		Bold(true)

	tagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color(m.detail.Tag.Color)).
		Bold(true).
		Padding(0, 1)

	return m.detail.Icon + " " + titleStyle.Render(m.detail.Title) + "  " + tagStyle.Render(m.detail.Tag.Text)
}

func (m *CorkDetailViewModel) renderFacts() string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF9F0A")).
		Bold(true).
		Width(12)
	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E5E7EB"))
	codeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30D158")).
		Background(lipgloss.Color("#111827")).
		Padding(0, 1)

	lines := []string{
		labelStyle.Render("RAM") + valueStyle.Render(m.detail.RAM),
		labelStyle.Render("Submitter") + valueStyle.Render(m.detail.Submitter),
		labelStyle.Render("Source") + valueStyle.Render(m.detail.SourceURL),
		labelStyle.Render("Install") + codeStyle.Render(m.detail.InstallCommand),
	}
	if dot := render.AuditDot(m.detail.Cork.Audit); m.detail.Cork.Audit != domain.AuditUnknown {
		lines = append(lines, labelStyle.Render("Audit")+valueStyle.Render(dot+" "+string(m.detail.Cork.Audit)))
	}
	return strings.Join(lines, "\n")
}

func (m *CorkDetailViewModel) renderSignalBox() string {
	var b strings.Builder

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30D158")).
		Bold(true)
	b.WriteString(headerStyle.Render("📡 COMMUNITY SIGNAL"))
	b.WriteString("\n\n")

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB")).
		Bold(true)
	captionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF"))

	switch {
	case m.loading || m.summary == nil:
		b.WriteString(captionStyle.Render("Scanning telemetry..."))
	default:
		value, caption := telemetry.Headline(*m.summary)
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
		b.WriteString(captionStyle.Render(caption))
		if m.summary.Count > 0 {
			b.WriteString("\n")
			b.WriteString(captionStyle.Render(fmt.Sprintf("t: view %d signal(s)", m.summary.Count)))
		}
	}
	b.WriteString("\n\n")

	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#30D158")).
		Bold(true).
		Padding(0, 2)
	b.WriteString(buttonStyle.Render("[v] " + m.ButtonText()))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#30D158")).
		Padding(1, 2).
		Width(minInt(60, maxInt(20, m.width-4)))

	return boxStyle.Render(b.String())
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
