package common

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const userAgent = "ci5dev"

// GetJSON fetches rawURL and decodes the body into target. Non-2xx
// responses wrap ErrUnexpectedStatus and undecodable bodies wrap
// ErrMalformedResponse.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := CheckStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// CheckStatus maps non-2xx responses to ErrUnexpectedStatus, or
// ErrUnauthorized for 401. Both also match ErrRejected.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %w: %s", ErrUnauthorized, ErrRejected, resp.Status)
	}
	return fmt.Errorf("%w: %w: %s %s", ErrUnexpectedStatus, ErrRejected, resp.Status, strings.TrimSpace(string(snippet)))
}

// SetUserAgent stamps outgoing requests made with the shared client.
func SetUserAgent(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
}
