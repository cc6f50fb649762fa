// Package submission builds the pre-filled issue composer URLs used to
// propose new corks and to report telemetry. Nothing here talks to the
// network: the user reviews and files the issue in their browser.
package submission

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/provider/common"
	"github.com/dreamswag/ci5dev/internal/telemetry"
)

const (
	SubmissionLabel = "cork-submission"
	TelemetryLabel  = telemetry.Label
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrInvalidVote  = errors.New("invalid vote")
)

// registryEntry is the manifest shape of a submitted cork. Signature and
// audit are filled in by maintainers.
type registryEntry struct {
	Repo          string  `json:"repo"`
	Desc          string  `json:"desc"`
	RAM           string  `json:"ram"`
	SubmitterHWID string  `json:"submitter_hwid"`
	Signature     *string `json:"signature"`
	Audit         *string `json:"audit"`
}

// Composer targets one issue repository on one GitHub web host.
type Composer struct {
	webBase string
	repo    string
	now     func() time.Time
}

func NewComposer(webBase, repo string) *Composer {
	return &Composer{
		webBase: strings.TrimRight(webBase, "/"),
		repo:    repo,
		now:     time.Now,
	}
}

type Issue struct {
	Title string
	Body  string
	Label string
	URL   string
}

func ShortHWID(hwid string) string {
	if hwid == "" {
		return "unknown"
	}
	if len(hwid) > 8 {
		return hwid[:8]
	}
	return hwid
}

// ValidateSubmission checks the fields a submission cannot do without.
func ValidateSubmission(sub domain.Submission) error {
	if strings.TrimSpace(sub.Name) == "" || common.NormalizeRepository(sub.Repo) == "" {
		return fmt.Errorf("%w: name and repo are required", ErrMissingField)
	}
	return nil
}

// Submission composes the issue proposing sub as a new registry entry.
func (c *Composer) Submission(sub domain.Submission, login, hwid string) (Issue, error) {
	if err := ValidateSubmission(sub); err != nil {
		return Issue{}, err
	}
	name := strings.TrimSpace(sub.Name)
	repo := common.NormalizeRepository(sub.Repo)

	desc := strings.TrimSpace(sub.Description)
	if desc == "" {
		desc = "No description"
	}
	short := ShortHWID(hwid)

	entry, err := marshalIndent(map[string]registryEntry{
		name: {
			Repo:          repo,
			Desc:          desc,
			RAM:           strings.TrimSpace(sub.RAM),
			SubmitterHWID: short,
		},
	})
	if err != nil {
		return Issue{}, err
	}
	// Strip the enclosing braces so the snippet pastes straight into the
	// manifest's community object.
	snippet := strings.TrimSpace(string(entry))
	snippet = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(snippet, "{"), "}"))
	snippet = dedent(snippet)

	var b strings.Builder
	b.WriteString("## New Cork Submission\n\n")
	b.WriteString("### Registry Entry\n```json\n")
	b.WriteString(snippet)
	b.WriteString("\n```\n\n")
	b.WriteString("### Submitter Info\n")
	fmt.Fprintf(&b, "- **GitHub:** @%s\n", login)
	fmt.Fprintf(&b, "- **Hardware ID:** `%s...` (verified)\n", short)
	fmt.Fprintf(&b, "- **Submitted:** %s\n\n", c.now().UTC().Format(time.RFC3339))
	b.WriteString("### Checklist\n")
	b.WriteString("- [ ] Cork builds successfully\n")
	b.WriteString("- [ ] Tested on Pi 5 with Ci5\n")
	b.WriteString("- [ ] No malicious code\n")
	b.WriteString("- [ ] Accurate RAM estimate\n\n")
	b.WriteString("---\n*Submitted via ci5dev with hardware verification*")

	issue := Issue{
		Title: "[Cork Submission] " + name,
		Body:  b.String(),
		Label: SubmissionLabel,
	}
	issue.URL = c.issueURL(issue)
	return issue, nil
}

// Vote composes a telemetry report for one cork.
func (c *Composer) Vote(cork string, ramMB int, status domain.SignalStatus, login, hwid string) (domain.Vote, Issue, error) {
	cork = strings.TrimSpace(cork)
	status, err := ValidateVote(cork, ramMB, status)
	if err != nil {
		return domain.Vote{}, Issue{}, err
	}

	vote := domain.Vote{
		Cork:      cork,
		RAMMB:     ramMB,
		Status:    status,
		HWID:      hwid,
		GitHub:    login,
		Timestamp: c.now().UTC(),
	}

	payload, err := marshalIndent(vote)
	if err != nil {
		return domain.Vote{}, Issue{}, err
	}

	var b strings.Builder
	b.WriteString(telemetry.Format(ramMB, status))
	b.WriteString("\n\n```json\n")
	b.WriteString(strings.TrimSpace(string(payload)))
	b.WriteString("\n```\n\n")
	fmt.Fprintf(&b, "Reported by @%s from hardware `%s...`", login, ShortHWID(hwid))

	issue := Issue{
		Title: telemetry.Title(cork),
		Body:  b.String(),
		Label: TelemetryLabel,
	}
	issue.URL = c.issueURL(issue)
	return vote, issue, nil
}

// ValidateVote checks a vote before any gate is passed and returns the
// normalized status.
func ValidateVote(cork string, ramMB int, status domain.SignalStatus) (domain.SignalStatus, error) {
	if strings.TrimSpace(cork) == "" {
		return "", fmt.Errorf("%w: no cork selected", ErrMissingField)
	}
	if ramMB <= 0 {
		return "", fmt.Errorf("%w: ram must be a positive number of MB", ErrInvalidVote)
	}
	return ParseStatus(string(status))
}

func ParseStatus(s string) (domain.SignalStatus, error) {
	switch status := domain.SignalStatus(strings.ToUpper(strings.TrimSpace(s))); status {
	case domain.SignalStable, domain.SignalUnstable, domain.SignalBroken:
		return status, nil
	}
	return "", fmt.Errorf("%w: status must be STABLE, UNSTABLE or BROKEN, got %q", ErrInvalidVote, s)
}

func (c *Composer) issueURL(issue Issue) string {
	q := url.Values{}
	q.Set("title", issue.Title)
	q.Set("body", issue.Body)
	q.Set("labels", issue.Label)
	return fmt.Sprintf("%s/%s/issues/new?%s", c.webBase, c.repo, q.Encode())
}

func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dedent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, "  ")
	}
	return strings.Join(lines, "\n")
}
