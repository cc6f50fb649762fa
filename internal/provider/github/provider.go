package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v57/github"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/provider/common"
	"github.com/dreamswag/ci5dev/internal/telemetry"
)

// Provider answers identity checks and reads telemetry signals from the
// issue tracker repository.
type Provider struct {
	httpClient *http.Client
	apiBase    string
	issueRepo  string
}

var (
	_ domain.AccountProvider = (*Provider)(nil)
	_ domain.SignalProvider  = (*Provider)(nil)
)

func NewProvider(httpClient *http.Client, apiBase, issueRepo string) *Provider {
	return &Provider{
		httpClient: httpClient,
		apiBase:    apiBase,
		issueRepo:  issueRepo,
	}
}

// CurrentUser resolves the account behind token. Any non-2xx answer is
// reported as common.ErrRejected.
func (p *Provider) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	client, err := NewClient(p.httpClient, token, p.apiBase)
	if err != nil {
		return nil, err
	}

	ghUser, err := client.CurrentUser(ctx)
	if err != nil {
		logger.LogError("GITHUB_CURRENT_USER", "", err)
		return nil, err
	}

	user := convertUser(ghUser)
	logger.Log("GitHub: authenticated as %s", user.Login)
	return &user, nil
}

// ListSignals collects telemetry lines from the issues filed for cork,
// reading both the issue bodies and their comments. Search is fuzzy, so
// only exact report titles are kept.
func (p *Provider) ListSignals(ctx context.Context, token, cork string) ([]domain.TelemetrySignal, error) {
	owner, repo, err := common.ParseRepository(p.issueRepo)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(p.httpClient, token, p.apiBase)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`repo:%s/%s is:issue label:%s in:title "%s"`, owner, repo, telemetry.Label, telemetry.Title(cork))
	logger.Log("GitHub: searching telemetry with %q", query)
	issues, err := client.SearchIssues(ctx, query)
	if err != nil {
		logger.LogError("GITHUB_SEARCH_TELEMETRY", cork, err)
		return nil, err
	}

	var signals []domain.TelemetrySignal
	for _, issue := range issues {
		if !telemetry.IsTitleFor(issue.GetTitle(), cork) {
			continue
		}

		signals = append(signals, convertIssue(issue)...)

		if issue.GetComments() == 0 {
			continue
		}
		comments, err := client.ListComments(ctx, owner, repo, issue.GetNumber())
		if err != nil {
			logger.LogError("GITHUB_LIST_COMMENTS", fmt.Sprintf("%s/%s#%d", owner, repo, issue.GetNumber()), err)
			return nil, err
		}
		for _, comment := range comments {
			signals = append(signals, convertComment(comment)...)
		}
	}

	logger.Log("GitHub: found %d telemetry signals for %s in %d issues", len(signals), cork, len(issues))
	return signals, nil
}

func convertUser(u *github.User) domain.User {
	return domain.User{
		Login:     u.GetLogin(),
		AvatarURL: u.GetAvatarURL(),
	}
}

func convertIssue(issue *github.Issue) []domain.TelemetrySignal {
	return toSignals(issue.GetBody(), issue.GetUser().GetLogin(), issue.GetHTMLURL(), issue.GetCreatedAt())
}

func convertComment(comment *github.IssueComment) []domain.TelemetrySignal {
	return toSignals(comment.GetBody(), comment.GetUser().GetLogin(), comment.GetHTMLURL(), comment.GetCreatedAt())
}

func toSignals(body, author, htmlURL string, created github.Timestamp) []domain.TelemetrySignal {
	readings := telemetry.ParseBody(body)
	if len(readings) == 0 {
		return nil
	}

	signals := make([]domain.TelemetrySignal, 0, len(readings))
	for _, r := range readings {
		signals = append(signals, domain.TelemetrySignal{
			Author:    author,
			RAMMB:     r.RAMMB,
			Status:    r.Status,
			CreatedAt: created.Time,
			URL:       htmlURL,
		})
	}
	return signals
}
