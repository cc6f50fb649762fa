package views

import (
	"strings"
	"testing"
	"time"

	"github.com/dreamswag/ci5dev/internal/domain"
)

func testSummary() domain.SignalSummary {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.SignalSummary{
		Cork:         "adguard",
		Count:        2,
		AverageRAMMB: 150,
		Statuses:     map[string]int{"STABLE": 1, "BROKEN": 1},
		Signals: []domain.TelemetrySignal{
			{Author: "alice", RAMMB: 140, Status: "STABLE", CreatedAt: base},
			{Author: "bob", RAMMB: 160, Status: "BROKEN", CreatedAt: base.Add(time.Hour), URL: "https://github.com/x/y/issues/2"},
		},
	}
}

func TestSignalsView_ActivateAndDeactivate(t *testing.T) {
	view := NewSignalsView()
	view.Activate(testSummary())

	if !view.IsActive() {
		t.Fatal("expected SignalsView to be active")
	}

	view.Deactivate()
	if view.IsActive() {
		t.Error("expected SignalsView to be inactive after Deactivate()")
	}
}

func TestSignalsView_Newest(t *testing.T) {
	view := NewSignalsView()
	view.Activate(testSummary())

	newest := view.Newest()
	if newest == nil {
		t.Fatal("expected a newest signal")
	}
	if newest.Author != "bob" {
		t.Errorf("expected bob, got %q", newest.Author)
	}
}

func TestSignalsView_NewestEmpty(t *testing.T) {
	view := NewSignalsView()
	view.Activate(domain.SignalSummary{Cork: "adguard"})

	if view.Newest() != nil {
		t.Error("expected no newest signal for an empty summary")
	}
}

func TestSignalsView_ListsNewestFirst(t *testing.T) {
	view := NewSignalsView()
	view.SetSize(100, 60)
	view.Activate(testSummary())

	output := view.View()
	bob := strings.Index(output, "@bob")
	alice := strings.Index(output, "@alice")
	if bob < 0 || alice < 0 {
		t.Fatalf("expected both authors in output")
	}
	if bob > alice {
		t.Error("expected newest signal listed first")
	}
	if !strings.Contains(output, "150 MB") {
		t.Error("expected headline average")
	}
}

func TestSignalsView_EmptyMessages(t *testing.T) {
	tests := []struct {
		name    string
		summary domain.SignalSummary
		want    string
	}{
		{"no reports", domain.SignalSummary{Cork: "adguard"}, "No one has reported"},
		{"tracker down", domain.SignalSummary{Cork: "adguard", NoSignal: true}, "could not be reached"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewSignalsView()
			view.SetSize(100, 40)
			view.Activate(tt.summary)

			if !strings.Contains(view.View(), tt.want) {
				t.Errorf("expected %q in view", tt.want)
			}
		})
	}
}
