package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestTopBar_ContextLines(t *testing.T) {
	bar := NewTopBar()
	bar.SetWidth(140)
	bar.SetSigner("AUTH: ci5-root", false)
	bar.SetIdentity("octocat", "deadbeefcafe", true)
	bar.SetView("official", 12)
	bar.SetSourceCount(2)

	output := bar.View()
	for _, want := range []string{"ci5dev", "AUTH: ci5-root", "@octocat", "verified (deadbeefcafe)", "[12]", "Sources:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected top bar to contain %q", want)
		}
	}
}

func TestTopBar_LoggedOut(t *testing.T) {
	bar := NewTopBar()
	bar.SetWidth(140)
	bar.SetSigner("OFFLINE MODE", true)

	output := bar.View()
	if !strings.Contains(output, "not connected") {
		t.Error("expected logged out marker")
	}
	if !strings.Contains(output, "unverified") {
		t.Error("expected unverified marker")
	}
	if !strings.Contains(output, "OFFLINE MODE") {
		t.Error("expected offline signer")
	}
}

func TestTopBar_Shortcuts(t *testing.T) {
	bar := NewTopBar()
	bar.SetWidth(160)
	bar.SetShortcuts([]string{"<enter> details", "</> search", "malformed", "<s> sources"})

	output := bar.View()
	if !strings.Contains(output, "<enter>") || !strings.Contains(output, "sources") {
		t.Error("expected shortcuts rendered")
	}
	if strings.Contains(output, "malformed") {
		t.Error("expected malformed shortcut to be skipped")
	}
}

func TestTopBar_ShortcutsSplitIntoTwoColumns(t *testing.T) {
	bar := NewTopBar()
	var shortcuts []string
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		shortcuts = append(shortcuts, "<"+k+"> key "+k)
	}
	bar.SetShortcuts(shortcuts)

	col1, col2, _ := bar.buildShortcutsDisplay(contextRows)
	if len(col1) != contextRows {
		t.Errorf("expected %d rows in first column, got %d", contextRows, len(col1))
	}
	if len(col2) != 2 {
		t.Errorf("expected 2 rows in second column, got %d", len(col2))
	}
}

func TestStatusBar_Messages(t *testing.T) {
	bar := NewStatusBar()
	bar.SetWidth(40)

	bar.SetMessage("Reloaded", false)
	if bar.IsError() || bar.Message() != "Reloaded" {
		t.Errorf("unexpected state %q error=%v", bar.Message(), bar.IsError())
	}

	bar.SetMessage("boom", true)
	if !bar.IsError() {
		t.Error("expected error state")
	}

	bar.ClearMessage()
	if bar.Message() != "" || bar.IsError() {
		t.Error("expected cleared message")
	}
}

func TestStatusBar_TruncatesLongMessages(t *testing.T) {
	bar := NewStatusBar()
	bar.SetWidth(20)
	bar.Set(strings.Repeat("signal ", 10), MessageSuccess)

	if !strings.Contains(bar.View(), "...") {
		t.Error("expected truncated message")
	}
}

func TestCommandBar_ActivateSeedsColon(t *testing.T) {
	bar := NewCommandBar()
	bar.Activate()

	if !bar.IsActive() {
		t.Fatal("expected command bar active")
	}
	if bar.Value() != ":" {
		t.Errorf("expected ':', got %q", bar.Value())
	}

	bar.Deactivate()
	if bar.IsActive() || bar.Value() != "" {
		t.Error("expected deactivated, empty command bar")
	}
}

func TestCommandBar_History(t *testing.T) {
	bar := NewCommandBar()
	bar.Remember(":search tor")
	bar.Remember(":view community")
	bar.Remember(":view community")
	bar.Remember(":")

	if got := bar.History(); len(got) != 2 {
		t.Fatalf("expected 2 history entries, got %v", got)
	}

	bar.Activate()
	bar.Update(tea.KeyMsg{Type: tea.KeyUp})
	if bar.Value() != ":view community" {
		t.Errorf("expected last command, got %q", bar.Value())
	}

	bar.Update(tea.KeyMsg{Type: tea.KeyUp})
	if bar.Value() != ":search tor" {
		t.Errorf("expected first command, got %q", bar.Value())
	}

	bar.Update(tea.KeyMsg{Type: tea.KeyDown})
	bar.Update(tea.KeyMsg{Type: tea.KeyDown})
	if bar.Value() != ":" {
		t.Errorf("expected fresh prompt after walking past history, got %q", bar.Value())
	}
}
