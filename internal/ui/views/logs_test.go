package views

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dreamswag/ci5dev/internal/logger"
)

func TestLogsView_ActivateLoadsBuffer(t *testing.T) {
	logger.Log("registry loaded: %d corks", 4)

	view := NewLogsView()
	view.SetSize(100, 40)
	view.Activate()

	if !view.IsActive() {
		t.Fatal("expected LogsView to be active")
	}
	if len(view.Entries()) == 0 {
		t.Fatal("expected buffered entries")
	}
	if !strings.Contains(view.View(), "registry loaded: 4 corks") {
		t.Error("expected the logged line in the view")
	}
}

func TestLogsView_ErrorsOnly(t *testing.T) {
	logger.Log("harmless")
	logger.LogError("fetch", "https://down.example.org", errors.New("boom"))

	view := NewLogsView()
	view.SetSize(100, 40)
	view.Activate()

	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})

	if !view.ErrorsOnly() {
		t.Fatal("expected errors-only filter on")
	}
	for _, e := range view.Entries() {
		if !strings.HasPrefix(e.Message, "[ERROR]") {
			t.Errorf("unexpected entry %q", e.Message)
		}
	}
	if len(view.Entries()) == 0 {
		t.Error("expected the error entry to remain")
	}
}

func TestLogsView_Deactivate(t *testing.T) {
	view := NewLogsView()
	view.Activate()
	view.Deactivate()

	if view.IsActive() {
		t.Error("expected inactive after Deactivate()")
	}
	if view.View() != "" {
		t.Error("expected empty view while inactive")
	}
}
