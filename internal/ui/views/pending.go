package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dreamswag/ci5dev/internal/domain"
)

type PendingKind int

const (
	PendingNone PendingKind = iota
	PendingLogin
	PendingVerify
)

// PendingViewModel is the modal shown while a device login or a hardware
// challenge waits for the user to act elsewhere.
type PendingViewModel struct {
	kind    PendingKind
	spinner spinner.Model
	code    domain.DeviceCode
	command string
	waiting string
	width   int
	height  int
}

func NewPendingView() *PendingViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#30D158"))
	return &PendingViewModel{spinner: s}
}

func (m *PendingViewModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShowLogin opens the modal with a device code. The spinner starts with
// the returned command.
func (m *PendingViewModel) ShowLogin(code domain.DeviceCode) tea.Cmd {
	m.kind = PendingLogin
	m.code = code
	m.command = ""
	m.waiting = "Waiting for GitHub authorization..."
	return m.spinner.Tick
}

// ShowVerify opens the modal with the command to run on the device.
func (m *PendingViewModel) ShowVerify(command string) tea.Cmd {
	m.kind = PendingVerify
	m.command = command
	m.code = domain.DeviceCode{}
	m.waiting = "Waiting for device..."
	return m.spinner.Tick
}

func (m *PendingViewModel) Close() {
	m.kind = PendingNone
	m.code = domain.DeviceCode{}
	m.command = ""
}

func (m *PendingViewModel) IsActive() bool {
	return m.kind != PendingNone
}

func (m *PendingViewModel) Kind() PendingKind {
	return m.kind
}

func (m *PendingViewModel) Code() domain.DeviceCode {
	return m.code
}

func (m *PendingViewModel) Command() string {
	return m.command
}

func (m *PendingViewModel) Update(msg tea.Msg) tea.Cmd {
	if m.kind == PendingNone {
		return nil
	}
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *PendingViewModel) View() string {
	if m.kind == PendingNone {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30D158")).
		Bold(true).
		Padding(1, 0)
	codeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F9FAFB")).
		Background(lipgloss.Color("#111827")).
		Bold(true).
		Padding(0, 2)
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)

	switch m.kind {
	case PendingLogin:
		b.WriteString(titleStyle.Render("🔑 Connect GitHub"))
		b.WriteString("\n\n")
		b.WriteString(textStyle.Render("Open " + m.code.VerificationURI + " and enter:"))
		b.WriteString("\n\n")
		b.WriteString(codeStyle.Render(m.code.UserCode))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("o: Open browser | c: Copy code | Esc: Cancel"))
	case PendingVerify:
		b.WriteString(titleStyle.Render("🔐 Verify Hardware"))
		b.WriteString("\n\n")
		b.WriteString(textStyle.Render("Run this on your Ci5 device:"))
		b.WriteString("\n\n")
		b.WriteString(codeStyle.Render(m.command))
		b.WriteString("\n\n")
		b.WriteString(mutedStyle.Render("c: Copy command | Esc: Cancel"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.spinner.View() + " " + textStyle.Render(m.waiting))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#30D158")).
		Padding(1, 2).
		Width(minInt(70, maxInt(20, m.width-4)))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(b.String()))
}
