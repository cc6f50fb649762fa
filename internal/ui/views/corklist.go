package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/render"
)

type CorkListViewModel struct {
	table    table.Model
	renderer *render.Renderer

	// view is the tab last chosen; a search overlays it until cleared.
	view    string
	listing render.Listing

	width       int
	height      int
	searchInput textinput.Model
	searching   bool
	searchQuery string
}

func NewCorkListView(r *render.Renderer) *CorkListViewModel {
	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Cork", Width: 28},
		{Title: "RAM", Width: 8},
		{Title: "", Width: 3},
		{Title: "Label", Width: 16},
		{Title: "Submitter", Width: 18},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.HiddenBorder()).
		Bold(false).
		Foreground(lipgloss.Color("#6B7280"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#30D158")).
		Background(lipgloss.Color("#1F2937")).
		Bold(true)
	t.SetStyles(s)

	ti := textinput.New()
	ti.Placeholder = "Search corks by name..."
	ti.CharLimit = 100

	m := &CorkListViewModel{
		table:       t,
		renderer:    r,
		view:        render.ViewOfficial,
		searchInput: ti,
	}
	m.rebuild()
	return m
}

func (m *CorkListViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(maxInt(1, height-9))
	m.updateColumnWidths()
}

func (m *CorkListViewModel) updateColumnWidths() {
	const (
		iconWidth      = 3
		ramWidth       = 8
		dotWidth       = 3
		labelWidth     = 16
		submitterWidth = 18
		minKeyWidth    = 16
		maxKeyWidth    = 60
	)

	fixed := iconWidth + ramWidth + dotWidth + labelWidth + submitterWidth
	keyWidth := clamp(m.width-fixed-2, minKeyWidth, maxKeyWidth)

	m.table.SetColumns([]table.Column{
		{Title: "", Width: iconWidth},
		{Title: "Cork", Width: keyWidth},
		{Title: "RAM", Width: ramWidth},
		{Title: "", Width: dotWidth},
		{Title: "Label", Width: labelWidth},
		{Title: "Submitter", Width: submitterWidth},
	})
	m.table.SetRows(m.rowsToTable(m.listing.Rows))
}

// SetRenderer swaps the registry behind the list, as after a reload. The
// selected tab falls back to official if its source disappeared.
func (m *CorkListViewModel) SetRenderer(r *render.Renderer) {
	m.renderer = r
	if !contains(r.Views(), m.view) {
		m.view = render.ViewOfficial
	}
	m.rebuild()
}

// rebuild re-renders the current tab or, while a query is set, the
// search results.
func (m *CorkListViewModel) rebuild() {
	if m.searchQuery != "" {
		m.listing = m.renderer.Search(m.searchQuery)
	} else {
		m.listing = m.renderer.Render(m.view)
	}
	m.table.SetRows(m.rowsToTable(m.listing.Rows))
	m.table.SetCursor(0)
}

func (m *CorkListViewModel) rowsToTable(rows []render.Row) []table.Row {
	out := make([]table.Row, len(rows))
	keyWidth := m.table.Columns()[1].Width
	for i, r := range rows {
		out[i] = table.Row{
			r.Icon,
			truncateString(r.Key, keyWidth),
			r.RAM,
			r.Dot,
			r.Label,
			truncateString(r.Submitter, 18),
		}
	}
	return out
}

// SelectView switches tabs and leaves any search.
func (m *CorkListViewModel) SelectView(viewID string) bool {
	if !contains(m.renderer.Views(), viewID) {
		return false
	}
	m.view = viewID
	m.searchQuery = ""
	m.searchInput.SetValue("")
	m.rebuild()
	return true
}

func (m *CorkListViewModel) NextView() {
	m.cycleView(1)
}

func (m *CorkListViewModel) PrevView() {
	m.cycleView(-1)
}

func (m *CorkListViewModel) cycleView(step int) {
	views := m.renderer.Views()
	idx := 0
	for i, v := range views {
		if v == m.view {
			idx = i
			break
		}
	}
	idx = (idx + step + len(views)) % len(views)
	m.SelectView(views[idx])
}

func (m *CorkListViewModel) CurrentView() string {
	if m.searchQuery != "" {
		return render.ViewSearch
	}
	return m.view
}

func (m *CorkListViewModel) Listing() render.Listing {
	return m.listing
}

func (m *CorkListViewModel) GetSelectedRow() *render.Row {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.listing.Rows) {
		return nil
	}
	row := m.listing.Rows[idx]
	return &row
}

func (m *CorkListViewModel) GetSelectedCork() *domain.Cork {
	row := m.GetSelectedRow()
	if row == nil {
		return nil
	}
	return &row.Cork
}

func (m *CorkListViewModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if m.searching {
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.applySearch(m.searchInput.Value())
		return cmd
	}
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func (m *CorkListViewModel) ActivateSearch() {
	m.searching = true
	m.searchInput.SetValue(m.searchQuery)
	m.searchInput.Focus()
}

// CloseSearch leaves the input but keeps the results on screen.
func (m *CorkListViewModel) CloseSearch() {
	m.searching = false
	m.searchInput.Blur()
}

func (m *CorkListViewModel) ClearSearch() {
	m.searchInput.SetValue("")
	m.CloseSearch()
	m.applySearch("")
}

// Search runs query as if it had been typed.
func (m *CorkListViewModel) Search(query string) {
	m.searchInput.SetValue(query)
	m.applySearch(query)
}

func (m *CorkListViewModel) applySearch(query string) {
	query = strings.TrimSpace(query)
	if query == m.searchQuery {
		return
	}
	m.searchQuery = query
	m.rebuild()
}

func (m *CorkListViewModel) IsSearching() bool {
	return m.searching
}

func (m *CorkListViewModel) SearchQuery() string {
	return m.searchQuery
}

func (m *CorkListViewModel) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30D158")).
		Bold(true)
	b.WriteString(headerStyle.Render(m.listing.Header))
	b.WriteString("\n")

	if len(m.listing.Rows) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true).
			Padding(1, 2)
		b.WriteString(emptyStyle.Render(m.listing.Empty))
	} else {
		b.WriteString(m.colorizeRows(m.table.View()))
	}

	if m.searching {
		searchStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#30D158")).
			Bold(true)
		b.WriteString("\n" + searchStyle.Render("Search: ") + m.searchInput.View())
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("\n" + m.helpText())
	b.WriteString(help)

	return b.String()
}

func (m *CorkListViewModel) renderTabs() string {
	active := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#30D158")).
		Bold(true).
		Padding(0, 1)
	inactive := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF")).
		Padding(0, 1)

	var tabs []string
	for _, v := range m.renderer.Views() {
		title := m.renderer.ViewTitle(v)
		if v == m.view && m.searchQuery == "" {
			tabs = append(tabs, active.Render(title))
		} else {
			tabs = append(tabs, inactive.Render(title))
		}
	}
	if m.searchQuery != "" {
		tabs = append(tabs, active.Render(fmt.Sprintf("🔎 %q", m.searchQuery)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// colorizeRows dims rows carrying a failing audit.
func (m *CorkListViewModel) colorizeRows(tableOutput string) string {
	lines := strings.Split(tableOutput, "\n")
	dangerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF453A"))

	for i, line := range lines {
		if strings.Contains(line, render.DotDanger) {
			lines[i] = dangerStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (m *CorkListViewModel) helpText() string {
	if m.searching {
		return "Type to search | Enter: Keep results | Esc: Clear"
	}
	if m.searchQuery != "" {
		return "Enter: Details | /: Search | Esc: Clear search | q: Quit"
	}
	return "Enter: Details | Tab/Shift+Tab: Views | /: Search | s: Sources | r: Reload | q: Quit"
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
