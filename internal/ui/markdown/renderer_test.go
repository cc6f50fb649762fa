package markdown

import (
	"strings"
	"testing"
)

func TestRenderer_EmptyText(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	for _, in := range []string{"", "   ", "\n\n"} {
		if got := r.Render(in); got != "" {
			t.Errorf("Render(%q): expected empty string, got %q", in, got)
		}
	}
}

func TestRenderer_PlainText(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("Network-wide ad blocking")

	if !strings.Contains(result, "Network-wide ad blocking") {
		t.Error("expected result to contain the description")
	}
}

func TestRenderer_Headings(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	tests := []struct {
		input string
		want  string
	}{
		{"# New Cork Submission", "New Cork Submission"},
		{"## New Cork Submission", "New Cork Submission"},
		{"### Registry Entry", "Registry Entry"},
	}

	for _, tt := range tests {
		result := r.Render(tt.input)
		if !strings.Contains(result, tt.want) {
			t.Errorf("Render(%q): expected %q in output", tt.input, tt.want)
		}
		if strings.Contains(result, "#") {
			t.Errorf("Render(%q): expected # to be stripped", tt.input)
		}
	}
}

func TestRenderer_BulletList(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	for _, input := range []string{"- item", "* item", "+ item"} {
		result := r.Render(input)
		if !strings.Contains(result, "•") {
			t.Errorf("Render(%q): expected bullet", input)
		}
		if !strings.Contains(result, "item") {
			t.Errorf("Render(%q): expected item text", input)
		}
	}
}

func TestRenderer_NumberedList(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("2. flash the image")

	if !strings.Contains(result, "2.") || !strings.Contains(result, "flash the image") {
		t.Errorf("unexpected numbered list output %q", result)
	}
}

func TestRenderer_TaskList(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	open := r.Render("- [ ] Cork builds successfully")
	if !strings.Contains(open, "☐") || !strings.Contains(open, "Cork builds successfully") {
		t.Errorf("expected open task, got %q", open)
	}
	if strings.Contains(open, "[ ]") {
		t.Error("expected checkbox markup to be replaced")
	}

	done := r.Render("- [x] No malicious code")
	if !strings.Contains(done, "☑") {
		t.Errorf("expected checked task, got %q", done)
	}
}

func TestRenderer_TelemetryLine(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	for _, input := range []string{
		"[TELEMETRY] RAM:142 STATUS:STABLE",
		"[TELEMETRY] RAM: 512MB STATUS: broken",
	} {
		result := r.Render(input)
		if !strings.Contains(result, "[TELEMETRY]") {
			t.Errorf("Render(%q): expected the line to be kept verbatim, got %q", input, result)
		}
		if strings.Contains(result, "•") {
			t.Errorf("Render(%q): telemetry line must not be treated as a list", input)
		}
	}
}

func TestRenderer_HorizontalRule(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	for _, input := range []string{"---", "***", "___", "- - -"} {
		if result := r.Render(input); !strings.Contains(result, "─") {
			t.Errorf("Render(%q): expected horizontal rule", input)
		}
	}
}

func TestRenderer_InlineStyles(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	tests := []struct {
		input   string
		want    string
		notWant string
	}{
		{"**GitHub:** @octocat", "GitHub:", "**"},
		{"*Submitted via ci5dev*", "Submitted via ci5dev", "*"},
		{"Hardware ID: `deadbeef...`", "deadbeef...", "`"},
	}

	for _, tt := range tests {
		result := r.Render(tt.input)
		if !strings.Contains(result, tt.want) {
			t.Errorf("Render(%q): expected %q in %q", tt.input, tt.want, result)
		}
		if strings.Contains(result, tt.notWant) {
			t.Errorf("Render(%q): expected %q to be stripped", tt.input, tt.notWant)
		}
	}
}

func TestRenderer_Mention(t *testing.T) {
	r := NewRenderer(DefaultStyles())

	result := r.Render("Reported by @octocat from hardware")
	if !strings.Contains(result, "@octocat") {
		t.Errorf("expected mention to survive, got %q", result)
	}

	email := r.Render("mail ops@ci5.network")
	if !strings.Contains(email, "ops@ci5.network") {
		t.Errorf("expected address untouched, got %q", email)
	}
}

func TestRenderer_CodeBlock(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	input := "```json\n\"pihole\": {\n  \"repo\": \"someone/cork-pihole\"\n}\n```"

	result := r.Render(input)
	if strings.Contains(result, "```") {
		t.Error("expected fences to be stripped")
	}
	if !strings.Contains(result, "json") {
		t.Error("expected language label")
	}
	if !strings.Contains(result, `"repo": "someone/cork-pihole"`) {
		t.Error("expected code block body to be preserved")
	}
}

func TestRenderer_UnterminatedCodeBlock(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("```\nci5 install adguard")

	if !strings.Contains(result, "ci5 install adguard") {
		t.Errorf("expected code to be shown, got %q", result)
	}
}

func TestRenderer_Link(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("[source](https://github.com/dreamswag/cork-adguard)")

	if !strings.Contains(result, "source") || !strings.Contains(result, "https://github.com/dreamswag/cork-adguard") {
		t.Errorf("unexpected link output %q", result)
	}
}

func TestRenderer_Blockquote(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	result := r.Render("> use at your own risk")

	if !strings.Contains(result, "use at your own risk") {
		t.Error("expected quote text")
	}
}

func TestRenderer_SubmissionBody(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	body := strings.Join([]string{
		"## New Cork Submission",
		"",
		"### Registry Entry",
		"```json",
		`"pihole": {}`,
		"```",
		"",
		"### Checklist",
		"- [ ] Cork builds successfully",
		"- [ ] Tested on Pi 5 with Ci5",
		"",
		"---",
		"*Submitted via ci5dev with hardware verification*",
	}, "\n")

	result := r.Render(body)
	for _, want := range []string{"New Cork Submission", "Registry Entry", `"pihole": {}`, "☐", "Tested on Pi 5 with Ci5", "─"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in rendered body", want)
		}
	}
}

func TestRenderer_SetWidth(t *testing.T) {
	r := NewRenderer(DefaultStyles())
	r.SetWidth(30)

	result := r.Render("---")
	if got := strings.Count(result, "─"); got != 26 {
		t.Errorf("expected a 26 wide rule, got %d", got)
	}
}
