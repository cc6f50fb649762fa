package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dreamswag/ci5dev/internal/domain"
)

func TestNewVoteView_InitializesInactive(t *testing.T) {
	view := NewVoteView()

	if view.IsActive() {
		t.Error("expected new VoteView to be inactive")
	}
}

func TestVoteView_Activate(t *testing.T) {
	view := NewVoteView()
	view.SetRAM("99")

	view.Activate("adguard")

	if !view.IsActive() {
		t.Fatal("expected VoteView to be active")
	}
	if view.Cork() != "adguard" {
		t.Errorf("expected cork adguard, got %q", view.Cork())
	}
	if view.RAM() != 0 {
		t.Errorf("expected RAM reset, got %d", view.RAM())
	}
	if view.Status() != domain.SignalStable {
		t.Errorf("expected STABLE default, got %s", view.Status())
	}
}

func TestVoteView_RAM(t *testing.T) {
	view := NewVoteView()
	view.Activate("adguard")

	view.SetRAM("142")
	if view.RAM() != 142 {
		t.Errorf("expected 142, got %d", view.RAM())
	}

	view.SetRAM("")
	if view.RAM() != 0 {
		t.Errorf("expected 0 for empty input, got %d", view.RAM())
	}
}

func TestVoteView_RejectsNonDigits(t *testing.T) {
	view := NewVoteView()
	view.Activate("adguard")

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})

	if view.RAM() != 12 {
		t.Errorf("expected 12, got %d", view.RAM())
	}
}

func TestVoteView_StatusCycles(t *testing.T) {
	view := NewVoteView()
	view.Activate("adguard")

	view.Update(tea.KeyMsg{Type: tea.KeyRight})
	if view.Status() != domain.SignalUnstable {
		t.Errorf("expected UNSTABLE, got %s", view.Status())
	}

	view.NextStatus()
	view.NextStatus()
	if view.Status() != domain.SignalStable {
		t.Errorf("expected wrap to STABLE, got %s", view.Status())
	}

	view.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if view.Status() != domain.SignalBroken {
		t.Errorf("expected wrap back to BROKEN, got %s", view.Status())
	}
}

func TestVoteView_View(t *testing.T) {
	view := NewVoteView()
	view.SetSize(100, 30)
	view.Activate("adguard")

	output := view.View()
	for _, want := range []string{"adguard", "STABLE", "UNSTABLE", "BROKEN"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}
