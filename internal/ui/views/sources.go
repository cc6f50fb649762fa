package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dreamswag/ci5dev/internal/domain"
)

// SourceStatus is what the last reload made of one source.
type SourceStatus struct {
	Label   string
	Count   int
	Err     error
	Fetched bool
}

type SourceItem struct {
	source domain.ExternalSource
	status SourceStatus
}

func (i SourceItem) FilterValue() string { return i.source.URL }

func (i SourceItem) Title() string {
	indicator := "○"
	if i.source.Enabled {
		indicator = "●"
	}
	label := i.status.Label
	if label == "" {
		label = i.source.URL
	}
	return fmt.Sprintf("%s %s", indicator, label)
}

func (i SourceItem) Description() string {
	switch {
	case !i.source.Enabled:
		return i.source.URL + " · disabled"
	case i.status.Err != nil:
		return i.source.URL + " · unavailable"
	case i.status.Fetched:
		return fmt.Sprintf("%s · %d corks", i.source.URL, i.status.Count)
	default:
		return i.source.URL + " · not loaded yet"
	}
}

type SourcesMode int

const (
	SourcesModeList SourcesMode = iota
	SourcesModeAdd
)

const sourceInputs = 2

type SourcesViewModel struct {
	list       list.Model
	Mode       SourcesMode
	urlInput   textinput.Model
	nameInput  textinput.Model
	inputFocus int
	width      int
	height     int
}

func NewSourcesView() *SourcesViewModel {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "🔗 External Sources"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	urlInput := textinput.New()
	urlInput.Placeholder = "https://example.com/corks.json"
	urlInput.CharLimit = 512

	nameInput := textinput.New()
	nameInput.Placeholder = "Display name (optional)"
	nameInput.CharLimit = 64

	return &SourcesViewModel{
		list:      l,
		Mode:      SourcesModeList,
		urlInput:  urlInput,
		nameInput: nameInput,
	}
}

func (m *SourcesViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, maxInt(1, height-9))
}

// SetSources lists sources in registration order. statuses is keyed by
// source ID; sources missing from it were never fetched.
func (m *SourcesViewModel) SetSources(sources []domain.ExternalSource, statuses map[string]SourceStatus) {
	items := make([]list.Item, len(sources))
	for i, src := range sources {
		items[i] = SourceItem{source: src, status: statuses[src.ID]}
	}
	m.list.SetItems(items)
}

func (m *SourcesViewModel) Len() int {
	return len(m.list.Items())
}

func (m *SourcesViewModel) EnterAddMode() {
	m.Mode = SourcesModeAdd
	m.inputFocus = 0
	m.urlInput.SetValue("")
	m.nameInput.SetValue("")
	m.blurAll()
	m.focusCurrent()
}

func (m *SourcesViewModel) ExitAddMode() {
	m.Mode = SourcesModeList
	m.urlInput.SetValue("")
	m.nameInput.SetValue("")
	m.blurAll()
}

func (m *SourcesViewModel) Update(msg tea.Msg) tea.Cmd {
	if m.Mode == SourcesModeAdd {
		return m.updateAddMode(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *SourcesViewModel) updateAddMode(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			m.moveFocus(1)
			return nil
		case "shift+tab", "up":
			m.moveFocus(-1)
			return nil
		}
	}

	var cmd tea.Cmd
	switch m.inputFocus {
	case 0:
		m.urlInput, cmd = m.urlInput.Update(msg)
	case 1:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return cmd
}

func (m *SourcesViewModel) moveFocus(step int) {
	m.blurAll()
	m.inputFocus = (m.inputFocus + step + sourceInputs) % sourceInputs
	m.focusCurrent()
}

func (m *SourcesViewModel) blurAll() {
	m.urlInput.Blur()
	m.nameInput.Blur()
}

func (m *SourcesViewModel) focusCurrent() {
	switch m.inputFocus {
	case 0:
		m.urlInput.Focus()
	case 1:
		m.nameInput.Focus()
	}
}

// GetNewSource returns the URL and name typed in add mode.
func (m *SourcesViewModel) GetNewSource() (url, name string) {
	return strings.TrimSpace(m.urlInput.Value()), strings.TrimSpace(m.nameInput.Value())
}

func (m *SourcesViewModel) SetNewSource(url, name string) {
	m.urlInput.SetValue(url)
	m.nameInput.SetValue(name)
}

func (m *SourcesViewModel) GetSelectedSource() *domain.ExternalSource {
	item, ok := m.list.SelectedItem().(SourceItem)
	if !ok {
		return nil
	}
	return &item.source
}

func (m *SourcesViewModel) View() string {
	if m.Mode == SourcesModeAdd {
		return m.viewAddMode()
	}
	return m.viewListMode()
}

func (m *SourcesViewModel) viewListMode() string {
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("\nEnter/Space: Toggle | a: Add | d: Delete | r: Reload | q: Back")

	if len(m.list.Items()) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Italic(true).
			Padding(1, 2).
			Render("No external sources. Press a to add a corks.json URL.")
		return m.list.Title + "\n" + empty + help
	}
	return m.list.View() + help
}

func (m *SourcesViewModel) viewAddMode() string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30D158")).
		Bold(true).
		Render("Add External Source\n\n")

	b.WriteString(title)
	b.WriteString("Manifest URL:\n")
	b.WriteString(m.urlInput.View() + "\n\n")
	b.WriteString("Name:\n")
	b.WriteString(m.nameInput.View() + "\n\n")

	warn := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF9F0A")).
		Render("Third-party corks are not signed or audited by ci5.\n\n")
	b.WriteString(warn)

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true).
		Render("Tab: Next | Shift+Tab: Previous | Enter: Save | Esc: Cancel")
	b.WriteString(help)

	return b.String()
}
