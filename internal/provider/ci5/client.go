// Package ci5 talks to the ci5 network API that issues hardware
// challenges and reports verified sessions.
package ci5

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/provider/common"
)

const (
	challengeCreatePath = "/v1/challenge/create"
	identityCheckPath   = "/v1/identity/check"
)

var tracer = otel.Tracer("github.com/dreamswag/ci5dev/internal/provider/ci5")

type CreateChallengeRequest struct {
	Challenge string `json:"challenge"`
	SessionID string `json:"session_id"`
	Expires   int64  `json:"expires"`
}

type IdentityResponse struct {
	Verified bool   `json:"verified"`
	HWID     string `json:"hwid,omitempty"`
}

type Client struct {
	http    *http.Client
	baseURL string
}

var _ domain.VerificationService = (*Client)(nil)

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateChallenge registers challenge for sessionID. expires is sent as
// Unix milliseconds.
func (c *Client) CreateChallenge(ctx context.Context, challenge, sessionID string, expires time.Time) error {
	ctx, span := tracer.Start(ctx, "ci5.CreateChallenge")
	defer span.End()

	payload, err := json.Marshal(CreateChallengeRequest{
		Challenge: challenge,
		SessionID: sessionID,
		Expires:   expires.UnixMilli(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+challengeCreatePath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	common.SetUserAgent(req)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("create challenge: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if err := common.CheckStatus(resp); err != nil {
		span.SetStatus(codes.Error, resp.Status)
		logger.LogError("CI5_CREATE_CHALLENGE", challenge, err)
		return fmt.Errorf("create challenge: %w", err)
	}

	logger.Log("ci5: challenge %s registered for session %s", challenge, sessionID)
	return nil
}

func (c *Client) CheckStatus(ctx context.Context, sessionID string) (domain.VerificationStatus, error) {
	ctx, span := tracer.Start(ctx, "ci5.CheckStatus")
	defer span.End()

	endpoint := c.baseURL + identityCheckPath + "?" + url.Values{"session": {sessionID}}.Encode()

	var body IdentityResponse
	if err := common.GetJSON(ctx, c.http, endpoint, &body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "identity check failed")
		return domain.VerificationStatus{}, fmt.Errorf("identity check: %w", err)
	}

	span.SetAttributes(attribute.Bool("ci5.verified", body.Verified))
	return domain.VerificationStatus{Verified: body.Verified, HardwareID: body.HWID}, nil
}
