package views

import (
	"strings"
	"testing"
)

func TestConfirmView_DefaultsToNo(t *testing.T) {
	view := NewConfirmView()
	view.Activate("Disconnect from Ci5?", "")

	if !view.IsActive() {
		t.Fatal("expected ConfirmView to be active")
	}
	if view.Confirmed() {
		t.Error("expected No to be preselected")
	}
	if view.Title() != "Disconnect from Ci5?" {
		t.Errorf("unexpected title %q", view.Title())
	}
}

func TestConfirmView_Toggle(t *testing.T) {
	view := NewConfirmView()
	view.Activate("Remove source?", "")

	view.Toggle()
	if !view.Confirmed() {
		t.Error("expected Yes after one toggle")
	}

	view.Toggle()
	if view.Confirmed() {
		t.Error("expected No after two toggles")
	}
}

func TestConfirmView_Deactivate(t *testing.T) {
	view := NewConfirmView()
	view.Activate("Remove source?", "body")
	view.Deactivate()

	if view.IsActive() {
		t.Error("expected inactive after Deactivate()")
	}
	if view.View() != "" {
		t.Error("expected empty view while inactive")
	}
}

func TestConfirmView_View(t *testing.T) {
	view := NewConfirmView()
	view.SetSize(80, 24)
	view.Activate("Disconnect from Ci5?", "Your hardware verification will be reset.")

	output := view.View()
	for _, want := range []string{"Disconnect from Ci5?", "Yes", "No"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}
