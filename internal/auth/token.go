package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dreamswag/ci5dev/internal/provider/common"
)

const deviceGrantType = "urn:ietf:params:oauth:grant-type:device_code"

var (
	ErrAccessDenied = errors.New("authorization denied by user")
	ErrExpired      = errors.New("device code expired")
	ErrTimeout      = errors.New("timed out waiting for authorization")
	ErrNoDeviceCode = errors.New("no device code received")

	errPending  = errors.New("authorization pending")
	errSlowDown = errors.New("slow down")
)

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// requestToken makes a single token poll. GitHub reports the pending and
// slow_down states with a 200 status and an error field.
func (f *Flow) requestToken(ctx context.Context, deviceCode string) (string, error) {
	form := url.Values{
		"client_id":   {f.oauth.ClientID},
		"device_code": {deviceCode},
		"grant_type":  {deviceGrantType},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.oauth.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	common.SetUserAgent(req)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", fmt.Errorf("%w: %d", common.ErrUnexpectedStatus, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	switch tr.Error {
	case "":
	case "authorization_pending":
		return "", errPending
	case "slow_down":
		return "", errSlowDown
	case "access_denied":
		return "", ErrAccessDenied
	case "expired_token":
		return "", ErrExpired
	default:
		return "", fmt.Errorf("token endpoint: %s: %s", tr.Error, tr.ErrorDescription)
	}

	if tr.AccessToken == "" {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", fmt.Errorf("%w: %d", common.ErrUnexpectedStatus, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: no access_token", common.ErrMalformedResponse)
	}
	return tr.AccessToken, nil
}
