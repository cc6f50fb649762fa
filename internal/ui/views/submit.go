package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dreamswag/ci5dev/internal/domain"
)

const (
	submitFieldName = iota
	submitFieldRepo
	submitFieldRAM
	submitFieldDesc
	submitFields
)

// SubmitViewModel is the cork submission form.
type SubmitViewModel struct {
	nameInput textinput.Model
	repoInput textinput.Model
	ramInput  textinput.Model
	desc      textarea.Model
	focus     int
	width     int
	height    int
	active    bool
}

func NewSubmitView() *SubmitViewModel {
	name := textinput.New()
	name.Placeholder = "cork-name"
	name.CharLimit = 64

	repo := textinput.New()
	repo.Placeholder = "owner/repo or https://github.com/owner/repo"
	repo.CharLimit = 256

	ram := textinput.New()
	ram.Placeholder = "e.g. 256MB"
	ram.CharLimit = 16

	ta := textarea.New()
	ta.Placeholder = "What does this cork run?"
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false

	return &SubmitViewModel{
		nameInput: name,
		repoInput: repo,
		ramInput:  ram,
		desc:      ta,
	}
}

func (m *SubmitViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.desc.SetWidth(maxInt(10, width-8))
	m.desc.SetHeight(maxInt(3, height-22))
}

func (m *SubmitViewModel) Activate() {
	m.active = true
	m.nameInput.SetValue("")
	m.repoInput.SetValue("")
	m.ramInput.SetValue("")
	m.desc.SetValue("")
	m.focus = submitFieldName
	m.applyFocus()
}

func (m *SubmitViewModel) Deactivate() {
	m.active = false
	m.nameInput.Blur()
	m.repoInput.Blur()
	m.ramInput.Blur()
	m.desc.Blur()
}

func (m *SubmitViewModel) IsActive() bool {
	return m.active
}

func (m *SubmitViewModel) GetSubmission() domain.Submission {
	return domain.Submission{
		Name:        strings.TrimSpace(m.nameInput.Value()),
		Repo:        strings.TrimSpace(m.repoInput.Value()),
		Description: strings.TrimSpace(m.desc.Value()),
		RAM:         strings.TrimSpace(m.ramInput.Value()),
	}
}

func (m *SubmitViewModel) SetSubmission(sub domain.Submission) {
	m.nameInput.SetValue(sub.Name)
	m.repoInput.SetValue(sub.Repo)
	m.ramInput.SetValue(sub.RAM)
	m.desc.SetValue(sub.Description)
}

func (m *SubmitViewModel) Focused() int {
	return m.focus
}

func (m *SubmitViewModel) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			m.focus = (m.focus + 1) % submitFields
			m.applyFocus()
			return nil
		case "shift+tab":
			m.focus = (m.focus - 1 + submitFields) % submitFields
			m.applyFocus()
			return nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case submitFieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case submitFieldRepo:
		m.repoInput, cmd = m.repoInput.Update(msg)
	case submitFieldRAM:
		m.ramInput, cmd = m.ramInput.Update(msg)
	case submitFieldDesc:
		m.desc, cmd = m.desc.Update(msg)
	}
	return cmd
}

func (m *SubmitViewModel) applyFocus() {
	m.nameInput.Blur()
	m.repoInput.Blur()
	m.ramInput.Blur()
	m.desc.Blur()

	switch m.focus {
	case submitFieldName:
		m.nameInput.Focus()
	case submitFieldRepo:
		m.repoInput.Focus()
	case submitFieldRAM:
		m.ramInput.Focus()
	case submitFieldDesc:
		m.desc.Focus()
	}
}

func (m *SubmitViewModel) View() string {
	if !m.active {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30D158")).
		Bold(true).
		Padding(1, 0)
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF9F0A"))

	b.WriteString(titleStyle.Render("🍾 Submit a Cork"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Name") + "\n" + m.nameInput.View() + "\n\n")
	b.WriteString(labelStyle.Render("Repository") + "\n" + m.repoInput.View() + "\n\n")
	b.WriteString(labelStyle.Render("RAM") + "\n" + m.ramInput.View() + "\n\n")
	b.WriteString(labelStyle.Render("Description") + "\n" + m.desc.View() + "\n\n")

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)
	b.WriteString(helpStyle.Render("Tab: Next field | Ctrl+S: Verify and open issue | Esc: Cancel"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#30D158")).
		Padding(1, 2).
		Width(maxInt(20, m.width-4))

	return boxStyle.Render(b.String())
}
