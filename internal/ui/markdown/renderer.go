// Package markdown renders the small markdown subset found in cork
// descriptions and composed issue bodies: headings, lists, task lists,
// fenced code, links, @mentions and telemetry report lines.
package markdown

import (
	"regexp"
	"strings"
)

type Renderer struct {
	styles   Styles
	width    int
	hRuleStr string
}

func NewRenderer(styles Styles) *Renderer {
	return &Renderer{
		styles:   styles,
		width:    80,
		hRuleStr: strings.Repeat("─", 40),
	}
}

func (r *Renderer) SetWidth(width int) {
	r.width = width
	if width > 10 {
		r.hRuleStr = strings.Repeat("─", width-4)
	}
}

func (r *Renderer) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var (
		out      []string
		fence    bool
		lang     string
		codeBody []string
	)

	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if fence {
				out = append(out, r.renderCodeBlock(lang, codeBody))
				codeBody = nil
				lang = ""
				fence = false
			} else {
				fence = true
				lang = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "```"))
			}
			continue
		}
		if fence {
			codeBody = append(codeBody, line)
			continue
		}
		out = append(out, r.renderLine(line))
	}

	// An unterminated fence still shows its contents.
	if fence && len(codeBody) > 0 {
		out = append(out, r.renderCodeBlock(lang, codeBody))
	}

	return strings.Join(out, "\n")
}

var (
	taskRegex      = regexp.MustCompile(`^[-*+]\s+\[([ xX])\]\s+(.*)$`)
	bulletRegex    = regexp.MustCompile(`^[-*+]\s+(.*)$`)
	numberedRegex  = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	telemetryRegex = regexp.MustCompile(`(?i)^\[TELEMETRY\]\s+RAM:\s*\d+\s*(?:MB)?\s+STATUS:\s*(STABLE|UNSTABLE|BROKEN)\b`)
)

func (r *Renderer) renderLine(line string) string {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return ""
	case isHorizontalRule(trimmed):
		return r.styles.HRule.Render(r.hRuleStr)
	case strings.HasPrefix(trimmed, "### "):
		return r.styles.H3.Render(strings.TrimPrefix(trimmed, "### "))
	case strings.HasPrefix(trimmed, "## "):
		return r.styles.H2.Render(strings.TrimPrefix(trimmed, "## "))
	case strings.HasPrefix(trimmed, "# "):
		return r.styles.H1.Render(strings.TrimPrefix(trimmed, "# "))
	case strings.HasPrefix(trimmed, "> "):
		return r.styles.Blockquote.Render(r.renderInline(strings.TrimPrefix(trimmed, "> ")))
	}

	if m := telemetryRegex.FindStringSubmatch(trimmed); m != nil {
		switch strings.ToUpper(m[1]) {
		case "STABLE":
			return r.styles.TelemetryStable.Render(trimmed)
		case "UNSTABLE":
			return r.styles.TelemetryUnstable.Render(trimmed)
		default:
			return r.styles.TelemetryBroken.Render(trimmed)
		}
	}

	if m := taskRegex.FindStringSubmatch(trimmed); m != nil {
		if m[1] == " " {
			return r.styles.TaskOpen.Render("☐") + " " + r.styles.ListItem.Render(r.renderInline(m[2]))
		}
		return r.styles.TaskDone.Render("☑") + " " + r.styles.ListItem.Render(r.renderInline(m[2]))
	}
	if m := bulletRegex.FindStringSubmatch(trimmed); m != nil {
		return r.styles.ListBullet.Render("•") + " " + r.styles.ListItem.Render(r.renderInline(m[1]))
	}
	if m := numberedRegex.FindStringSubmatch(trimmed); m != nil {
		return r.styles.ListBullet.Render(m[1]+".") + " " + r.styles.ListItem.Render(r.renderInline(m[2]))
	}

	return r.styles.Text.Render(r.renderInline(trimmed))
}

func isHorizontalRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	for _, c := range []string{"-", "*", "_"} {
		if strings.Trim(line, c+" ") == "" && strings.Count(line, c) >= 3 {
			return true
		}
	}
	return false
}

var (
	boldRegex    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicRegex  = regexp.MustCompile(`\*([^*]+)\*`)
	codeRegex    = regexp.MustCompile("`([^`]+)`")
	linkRegex    = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	mentionRegex = regexp.MustCompile(`(^|\s)@([A-Za-z0-9][A-Za-z0-9-]*)`)
)

func (r *Renderer) renderInline(text string) string {
	text = boldRegex.ReplaceAllStringFunc(text, func(match string) string {
		return r.styles.Bold.Render(boldRegex.FindStringSubmatch(match)[1])
	})

	text = italicRegex.ReplaceAllStringFunc(text, func(match string) string {
		return r.styles.Italic.Render(italicRegex.FindStringSubmatch(match)[1])
	})

	text = codeRegex.ReplaceAllStringFunc(text, func(match string) string {
		return r.styles.Code.Render(codeRegex.FindStringSubmatch(match)[1])
	})

	text = linkRegex.ReplaceAllStringFunc(text, func(match string) string {
		m := linkRegex.FindStringSubmatch(match)
		return r.styles.Link.Render(m[1]) + " " + r.styles.LinkURL.Render("("+m[2]+")")
	})

	text = mentionRegex.ReplaceAllStringFunc(text, func(match string) string {
		m := mentionRegex.FindStringSubmatch(match)
		return m[1] + r.styles.Mention.Render("@"+m[2])
	})

	return text
}

func (r *Renderer) renderCodeBlock(lang string, lines []string) string {
	block := r.styles.CodeBlock.Render(strings.Join(lines, "\n"))
	if lang == "" {
		return block
	}
	return r.styles.CodeLang.Render(lang) + "\n" + block
}
