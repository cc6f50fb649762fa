package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dreamswag/ci5dev/internal/domain"
)

func TestNewSubmitView_InitializesInactive(t *testing.T) {
	view := NewSubmitView()

	if view.IsActive() {
		t.Error("expected new SubmitView to be inactive")
	}
	if view.View() != "" {
		t.Error("expected empty view while inactive")
	}
}

func TestSubmitView_ActivateClearsForm(t *testing.T) {
	view := NewSubmitView()
	view.SetSubmission(domain.Submission{Name: "old", Repo: "a/b"})

	view.Activate()

	if !view.IsActive() {
		t.Fatal("expected SubmitView to be active")
	}
	if got := view.GetSubmission(); got != (domain.Submission{}) {
		t.Errorf("expected empty submission, got %+v", got)
	}
	if view.Focused() != submitFieldName {
		t.Errorf("expected name field focused, got %d", view.Focused())
	}
}

func TestSubmitView_GetSubmissionTrims(t *testing.T) {
	view := NewSubmitView()
	view.Activate()
	view.SetSubmission(domain.Submission{
		Name:        "  ad-shield ",
		Repo:        " alice/ad-shield ",
		RAM:         "64MB ",
		Description: "\nBlocks ads\n",
	})

	want := domain.Submission{Name: "ad-shield", Repo: "alice/ad-shield", RAM: "64MB", Description: "Blocks ads"}
	if got := view.GetSubmission(); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestSubmitView_TabCyclesFocus(t *testing.T) {
	view := NewSubmitView()
	view.Activate()

	view.Update(tea.KeyMsg{Type: tea.KeyTab})
	if view.Focused() != submitFieldRepo {
		t.Errorf("expected repo focused, got %d", view.Focused())
	}

	view.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	view.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if view.Focused() != submitFieldDesc {
		t.Errorf("expected wrap to description, got %d", view.Focused())
	}
}

func TestSubmitView_TypingFillsFocusedField(t *testing.T) {
	view := NewSubmitView()
	view.Activate()

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("vpn")})

	if got := view.GetSubmission().Name; got != "vpn" {
		t.Errorf("expected name 'vpn', got %q", got)
	}
}

func TestSubmitView_Deactivate(t *testing.T) {
	view := NewSubmitView()
	view.Activate()
	view.Deactivate()

	if view.IsActive() {
		t.Error("expected SubmitView to be inactive after Deactivate()")
	}
}

func TestSubmitView_ViewShowsHelp(t *testing.T) {
	view := NewSubmitView()
	view.SetSize(100, 40)
	view.Activate()

	if !strings.Contains(view.View(), "Ctrl+S") {
		t.Error("expected Ctrl+S hint")
	}
}
