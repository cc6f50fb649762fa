package telemetry

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dreamswag/ci5dev/internal/domain"
)

const (
	Label       = "telemetry"
	titlePrefix = "[Telemetry] "
)

var signalPattern = regexp.MustCompile(`\[TELEMETRY\]\s*RAM:\s*(\d+)\s+STATUS:\s*([A-Za-z0-9_-]+)`)

type Reading struct {
	RAMMB  int
	Status string
}

// ParseBody extracts every telemetry line from a comment or issue body.
func ParseBody(body string) []Reading {
	matches := signalPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	readings := make([]Reading, 0, len(matches))
	for _, m := range matches {
		ram, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		readings = append(readings, Reading{RAMMB: ram, Status: strings.ToUpper(m[2])})
	}
	return readings
}

// Format renders the line ParseBody understands.
func Format(ramMB int, status domain.SignalStatus) string {
	return fmt.Sprintf("[TELEMETRY] RAM:%d STATUS:%s", ramMB, status)
}

// Title is the issue title a telemetry report for cork is filed under.
func Title(cork string) string {
	return titlePrefix + cork
}

// IsTitleFor reports whether an issue title belongs to cork and not to a
// cork whose name merely shares a prefix.
func IsTitleFor(title, cork string) bool {
	return strings.EqualFold(strings.TrimSpace(title), Title(strings.TrimSpace(cork)))
}

func Summarize(cork string, signals []domain.TelemetrySignal) domain.SignalSummary {
	summary := domain.SignalSummary{
		Cork:     cork,
		Count:    len(signals),
		Statuses: make(map[string]int),
		Signals:  signals,
	}
	if len(signals) == 0 {
		return summary
	}

	total := 0
	for _, s := range signals {
		total += s.RAMMB
		summary.Statuses[s.Status]++
	}
	summary.AverageRAMMB = (total + len(signals)/2) / len(signals)
	return summary
}

// Headline returns the value and caption shown in the community box.
func Headline(s domain.SignalSummary) (value, caption string) {
	switch {
	case s.NoSignal:
		return "—", "NO DATA SIGNAL"
	case s.Count == 0:
		return "—", "No votes yet"
	}

	statuses := make([]string, 0, len(s.Statuses))
	for status := range s.Statuses {
		statuses = append(statuses, status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		if s.Statuses[statuses[i]] != s.Statuses[statuses[j]] {
			return s.Statuses[statuses[i]] > s.Statuses[statuses[j]]
		}
		return statuses[i] < statuses[j]
	})

	parts := make([]string, 0, len(statuses)+1)
	votes := "votes"
	if s.Count == 1 {
		votes = "vote"
	}
	parts = append(parts, fmt.Sprintf("%d %s", s.Count, votes))
	for _, status := range statuses {
		parts = append(parts, fmt.Sprintf("%s %d", status, s.Statuses[status]))
	}

	return fmt.Sprintf("%d MB", s.AverageRAMMB), strings.Join(parts, " · ")
}
