package markdown

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	H1         lipgloss.Style
	H2         lipgloss.Style
	H3         lipgloss.Style
	Text       lipgloss.Style
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	Code       lipgloss.Style
	CodeBlock  lipgloss.Style
	CodeLang   lipgloss.Style
	Link       lipgloss.Style
	LinkURL    lipgloss.Style
	Mention    lipgloss.Style
	ListBullet lipgloss.Style
	ListItem   lipgloss.Style
	TaskOpen   lipgloss.Style
	TaskDone   lipgloss.Style
	HRule      lipgloss.Style
	Blockquote lipgloss.Style

	// Telemetry lines are colored by their reported status.
	TelemetryStable   lipgloss.Style
	TelemetryUnstable lipgloss.Style
	TelemetryBroken   lipgloss.Style
}

func DefaultStyles() Styles {
	green := lipgloss.Color("#30D158")
	amber := lipgloss.Color("#FF9F0A")
	red := lipgloss.Color("#FF453A")
	blue := lipgloss.Color("#0A84FF")
	gray := lipgloss.Color("#6B7280")
	text := lipgloss.Color("#E5E7EB")
	codeBg := lipgloss.Color("#111827")

	return Styles{
		H1: lipgloss.NewStyle().
			Foreground(green).
			Bold(true).
			MarginBottom(1),

		H2: lipgloss.NewStyle().
			Foreground(green).
			Bold(true).
			MarginTop(1),

		H3: lipgloss.NewStyle().
			Foreground(text).
			Bold(true).
			Underline(true),

		Text: lipgloss.NewStyle().
			Foreground(text),

		Bold: lipgloss.NewStyle().
			Foreground(text).
			Bold(true),

		Italic: lipgloss.NewStyle().
			Foreground(gray).
			Italic(true),

		Code: lipgloss.NewStyle().
			Foreground(green).
			Background(codeBg),

		CodeBlock: lipgloss.NewStyle().
			Foreground(green).
			Background(codeBg).
			Padding(0, 1),

		CodeLang: lipgloss.NewStyle().
			Foreground(gray).
			Italic(true),

		Link: lipgloss.NewStyle().
			Foreground(blue).
			Underline(true),

		LinkURL: lipgloss.NewStyle().
			Foreground(gray),

		Mention: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),

		ListBullet: lipgloss.NewStyle().
			Foreground(green),

		ListItem: lipgloss.NewStyle().
			Foreground(text),

		TaskOpen: lipgloss.NewStyle().
			Foreground(gray),

		TaskDone: lipgloss.NewStyle().
			Foreground(green),

		HRule: lipgloss.NewStyle().
			Foreground(gray),

		Blockquote: lipgloss.NewStyle().
			Foreground(gray).
			Italic(true).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(gray),

		TelemetryStable: lipgloss.NewStyle().
			Foreground(green).
			Bold(true),

		TelemetryUnstable: lipgloss.NewStyle().
			Foreground(amber).
			Bold(true),

		TelemetryBroken: lipgloss.NewStyle().
			Foreground(red).
			Bold(true),
	}
}
