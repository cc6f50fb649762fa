package common

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/metrics"
)

const maxLoggedBody = 4096

// secretFields matches credential-bearing fields in both JSON and
// form-encoded OAuth bodies.
var secretFields = regexp.MustCompile(`("?(?:access_token|device_code|refresh_token)"?\s*[:=]\s*"?)([^"&,\s}]+)`)

// LoggingTransport wraps an http.RoundTripper to log every exchange and
// record it in the client metrics.
type LoggingTransport struct {
	Transport http.RoundTripper
	Metrics   *metrics.Metrics
}

func NewLoggingTransport(transport http.RoundTripper, m *metrics.Metrics) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &LoggingTransport{
		Transport: transport,
		Metrics:   m,
	}
}

// NewHTTPClient returns a client with a per-request timeout whose
// exchanges are logged and counted.
func NewHTTPClient(timeout time.Duration, m *metrics.Metrics) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewLoggingTransport(nil, m),
	}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	t.logRequest(req)

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.Metrics.ObserveHTTP(req.URL.Host, req.Method, 0, duration)
		logger.LogError("HTTP_REQUEST", fmt.Sprintf("%s %s", req.Method, req.URL.Redacted()), err)
		return nil, err
	}

	t.Metrics.ObserveHTTP(req.URL.Host, req.Method, resp.StatusCode, duration)
	t.logResponse(req, resp, duration)

	return resp, nil
}

func (t *LoggingTransport) logRequest(req *http.Request) {
	var buf strings.Builder
	fmt.Fprintf(&buf, "HTTP %s %s", req.Method, req.URL.Redacted())

	var headers []string
	for name, values := range req.Header {
		if isSensitiveHeader(name) {
			headers = append(headers, name+"=[REDACTED]")
			continue
		}
		headers = append(headers, name+"="+strings.Join(values, ","))
	}
	if len(headers) > 0 {
		fmt.Fprintf(&buf, " headers{%s}", strings.Join(headers, " "))
	}

	if req.Body != nil && req.GetBody != nil && req.ContentLength > 0 && req.ContentLength < maxLoggedBody {
		if body, err := req.GetBody(); err == nil {
			data, _ := io.ReadAll(body)
			body.Close()
			fmt.Fprintf(&buf, " body=%s", redactSecrets(string(data)))
		}
	}

	logger.Log("%s", buf.String())
}

func (t *LoggingTransport) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	var buf strings.Builder
	fmt.Fprintf(&buf, "HTTP %s %s -> %s (%v)", req.Method, req.URL.Path, resp.Status, duration.Round(time.Millisecond))

	if resp.Body != nil && resp.ContentLength != 0 {
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err == nil {
			resp.Body = io.NopCloser(bytes.NewReader(data))
			switch {
			case len(data) == 0:
			case len(data) < maxLoggedBody:
				fmt.Fprintf(&buf, " body=%s", redactSecrets(string(data)))
			default:
				fmt.Fprintf(&buf, " body=(%d bytes)", len(data))
			}
		} else {
			resp.Body = io.NopCloser(bytes.NewReader(nil))
		}
	}

	logger.Log("%s", buf.String())
}

func redactSecrets(s string) string {
	return secretFields.ReplaceAllString(s, "${1}[REDACTED]")
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "api-key", "x-auth-token", "cookie", "set-cookie":
		return true
	}
	return false
}
