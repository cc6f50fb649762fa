package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/dreamswag/ci5dev/internal/provider/common"
)

type Client struct {
	client *github.Client
}

// NewClient returns an API client on top of httpClient. An empty token
// makes anonymous requests.
func NewClient(httpClient *http.Client, token, apiBase string) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	hc := httpClient
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		hc = oauth2.NewClient(ctx, ts)
		hc.Timeout = httpClient.Timeout
	}

	client := github.NewClient(hc)
	if apiBase != "" {
		if !strings.HasSuffix(apiBase, "/") {
			apiBase += "/"
		}
		base, err := url.Parse(apiBase)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API url %q: %w", apiBase, err)
		}
		client.BaseURL = base
	}

	return &Client{client: client}, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*github.User, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return nil, wrapError("failed to get user", err)
	}
	return user, nil
}

func (c *Client) SearchIssues(ctx context.Context, query string) ([]*github.Issue, error) {
	opts := &github.SearchOptions{
		Sort:        "created",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	result, _, err := c.client.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, wrapError("failed to search issues", err)
	}
	return result.Issues, nil
}

func (c *Client) ListComments(ctx context.Context, owner, repo string, number int) ([]*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	comments, _, err := c.client.Issues.ListComments(ctx, owner, repo, number, opts)
	if err != nil {
		return nil, wrapError("failed to list comments", err)
	}
	return comments, nil
}

// wrapError tags any answered non-2xx response as common.ErrRejected,
// and a 401 additionally as common.ErrUnauthorized. Errors without a
// response pass through untagged.
func wrapError(op string, err error) error {
	resp := errorResponse(err)
	if resp == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w: %w: %w", op, common.ErrUnauthorized, common.ErrRejected, err)
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrRejected, err)
}

func errorResponse(err error) *http.Response {
	var (
		ghErr    *github.ErrorResponse
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
	)
	switch {
	case errors.As(err, &ghErr):
		return ghErr.Response
	case errors.As(err, &rateErr):
		return rateErr.Response
	case errors.As(err, &abuseErr):
		return abuseErr.Response
	}
	return nil
}
