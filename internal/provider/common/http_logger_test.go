package common

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/metrics"
)

func TestRedactSecrets(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"access_token":"gho_abc","token_type":"bearer"}`, `{"access_token":"[REDACTED]","token_type":"bearer"}`},
		{`client_id=x&device_code=3584d83530557fdd&grant_type=y`, `client_id=x&device_code=[REDACTED]&grant_type=y`},
		{`{"error":"authorization_pending"}`, `{"error":"authorization_pending"}`},
	}
	for _, tt := range tests {
		if got := redactSecrets(tt.in); got != tt.want {
			t.Errorf("redactSecrets(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoggingTransportPreservesBodyAndRedacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"gho_secret"}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(5*time.Second, metrics.New())
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/login/oauth/access_token", strings.NewReader("device_code=abc"))
	req.Header.Set("Authorization", "token gho_secret")

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"access_token":"gho_secret"}` {
		t.Errorf("response body not restored: %s", body)
	}

	for _, entry := range logger.GetLogs() {
		if strings.Contains(entry.Message, "gho_secret") || strings.Contains(entry.Message, "device_code=abc") {
			t.Errorf("secret leaked into log: %s", entry.Message)
		}
	}
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "ci5dev" {
			t.Errorf("missing user agent, got %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/ok":
			_, _ = io.WriteString(w, `{"name":"x"}`)
		case "/bad":
			_, _ = io.WriteString(w, `{"name":`)
		case "/auth":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(5*time.Second, nil)
	ctx := context.Background()

	var v struct {
		Name string `json:"name"`
	}
	if err := GetJSON(ctx, client, srv.URL+"/ok", &v); err != nil || v.Name != "x" {
		t.Errorf("GetJSON ok: %v %+v", err, v)
	}
	if err := GetJSON(ctx, client, srv.URL+"/bad", &v); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
	if err := GetJSON(ctx, client, srv.URL+"/auth", &v); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if err := GetJSON(ctx, client, srv.URL+"/boom", &v); !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("expected ErrUnexpectedStatus, got %v", err)
	}
}
