package ui

import "github.com/charmbracelet/lipgloss"

var (
	greenColor = lipgloss.Color("#30D158")
	amberColor = lipgloss.Color("#FF9F0A")
	redColor   = lipgloss.Color("#FF453A")
	blueColor  = lipgloss.Color("#0A84FF")
	mutedColor = lipgloss.Color("#6B7280")
	foreground = lipgloss.Color("#F9FAFB")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(greenColor).
			Bold(true).
			MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().
			Foreground(blueColor).
			Bold(true)

	DescriptionStyle = lipgloss.NewStyle().
				Foreground(foreground)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			MarginTop(1)

	WarningStyle = lipgloss.NewStyle().
			Foreground(amberColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(redColor).
			Bold(true)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(greenColor).
			Padding(1, 2)
)
