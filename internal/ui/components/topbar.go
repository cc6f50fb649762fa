package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TopBarModel is the header: the ci5dev title, a context column with the
// session identity and the current view, and the shortcuts that apply to
// that view.
type TopBarModel struct {
	width     int
	signer    string
	offline   bool
	user      string
	hardware  string
	verified  bool
	view      string
	count     int
	sources   int
	shortcuts []string
}

var (
	titleStyle        = lipgloss.NewStyle().Padding(1, 2)
	titleGreenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#30D158")).Bold(true)
	labelAmberStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9F0A")).Bold(true)
	valueWhiteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	offlineRedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF453A")).Bold(true)
	shortcutBlueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0A84FF")).Bold(true)
	descGrayStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
)

const contextRows = 5

func NewTopBar() *TopBarModel {
	return &TopBarModel{}
}

func (m *TopBarModel) SetWidth(width int) {
	m.width = width
}

// SetSigner takes the renderer's signer line; offline marks it red.
func (m *TopBarModel) SetSigner(signer string, offline bool) {
	m.signer = signer
	m.offline = offline
}

// SetIdentity records the GitHub login (empty when logged out) and the
// verified hardware id (empty when unverified).
func (m *TopBarModel) SetIdentity(user, hardware string, verified bool) {
	m.user = user
	m.hardware = hardware
	m.verified = verified
}

func (m *TopBarModel) SetView(view string, count int) {
	m.view = view
	m.count = count
}

func (m *TopBarModel) SetSourceCount(n int) {
	m.sources = n
}

func (m *TopBarModel) SetShortcuts(shortcuts []string) {
	m.shortcuts = shortcuts
}

func (m *TopBarModel) View() string {
	contextLines := m.buildContextInfo()
	shortcutCol1, shortcutCol2, col1Width := m.buildShortcutsDisplay(len(contextLines))

	topSection := []string{titleGreenStyle.Render("ci5dev") + " " + descGrayStyle.Render("cork registry"), ""}

	const contextColWidth = 45
	const colMargin = 4

	for i := 0; i < contextRows; i++ {
		var contextCol, sc1, sc2 string
		if i < len(contextLines) {
			contextCol = contextLines[i]
		}
		if i < len(shortcutCol1) {
			sc1 = shortcutCol1[i]
		}
		if i < len(shortcutCol2) {
			sc2 = shortcutCol2[i]
		}

		padding1 := contextColWidth - lipgloss.Width(contextCol)
		if padding1 < 1 {
			padding1 = 1
		}
		line := contextCol + strings.Repeat(" ", padding1) + sc1

		if sc2 != "" {
			padding2 := col1Width - lipgloss.Width(sc1) + colMargin
			if padding2 < colMargin {
				padding2 = colMargin
			}
			line += strings.Repeat(" ", padding2) + sc2
		}

		topSection = append(topSection, line)
	}

	return titleStyle.Width(m.width).Render(strings.Join(topSection, "\n"))
}

func (m *TopBarModel) buildContextInfo() []string {
	var lines []string

	signer := m.signer
	if signer == "" {
		signer = "loading..."
	}
	if m.offline {
		lines = append(lines, "📴 "+offlineRedStyle.Render(signer))
	} else {
		lines = append(lines, "🔏 "+valueWhiteStyle.Render(truncate(signer, 38)))
	}

	user := "not connected"
	if m.user != "" {
		user = "@" + m.user
	}
	lines = append(lines, "🐙 "+labelAmberStyle.Render("GitHub: ")+valueWhiteStyle.Render(user))

	hw := "unverified"
	if m.verified {
		hw = "verified"
		if m.hardware != "" {
			hw = fmt.Sprintf("verified (%s)", truncate(m.hardware, 12))
		}
	}
	lines = append(lines, "🔐 "+labelAmberStyle.Render("Hardware: ")+valueWhiteStyle.Render(hw))

	view := m.view
	if view == "" {
		view = "official"
	}
	viewLine := "🎯 " + labelAmberStyle.Render("View: ") + valueWhiteStyle.Render(truncate(view, 24)) +
		descGrayStyle.Render(fmt.Sprintf(" [%d]", m.count))
	lines = append(lines, viewLine)

	lines = append(lines, "🔗 "+labelAmberStyle.Render("Sources: ")+valueWhiteStyle.Render(fmt.Sprintf("%d", m.sources)))

	return lines
}

func (m *TopBarModel) buildShortcutsDisplay(contextHeight int) ([]string, []string, int) {
	var formatted []string
	maxWidth := 0

	for _, shortcut := range m.shortcuts {
		parts := strings.SplitN(shortcut, ">", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimPrefix(parts[0], "<")
		desc := strings.TrimSpace(parts[1])

		f := shortcutBlueStyle.Render("<"+key+">") + " " + descGrayStyle.Render(desc)
		formatted = append(formatted, f)
		if w := lipgloss.Width(f); w > maxWidth {
			maxWidth = w
		}
	}

	rows := contextRows
	if contextHeight > rows {
		rows = contextHeight
	}

	if len(formatted) <= rows {
		return formatted, nil, maxWidth
	}
	col2 := formatted[rows:]
	if len(col2) > rows {
		col2 = col2[:rows]
	}
	return formatted[:rows], col2, maxWidth
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
