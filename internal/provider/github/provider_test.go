package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamswag/ci5dev/internal/provider/common"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_good" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Bad credentials"}`)
			return
		}
		fmt.Fprint(w, `{"login":"octo","avatar_url":"https://avatars.example/octo.png"}`)
	})

	mux.HandleFunc("/search/issues", func(w http.ResponseWriter, r *http.Request) {
		switch q := r.URL.Query().Get("q"); q {
		case `repo:dreamswag/ci5.dev is:issue label:telemetry in:title "[Telemetry] adguard"`:
			fmt.Fprint(w, `{"total_count":2,"items":[
				{"number":7,"title":"[Telemetry] adguard","comments":2,"body":"[TELEMETRY] RAM:400 STATUS:STABLE","user":{"login":"alice"},"created_at":"2025-01-01T00:00:00Z"},
				{"number":8,"title":"Unrelated issue","comments":5,"body":"[TELEMETRY] RAM:1 STATUS:BROKEN","user":{"login":"mallory"}}
			]}`)
		case `repo:dreamswag/ci5.dev is:issue label:telemetry in:title "[Telemetry] tor"`:
			fmt.Fprint(w, `{"total_count":2,"items":[
				{"number":20,"title":"[Telemetry] tor","comments":0,"body":"[TELEMETRY] RAM:100 STATUS:STABLE","user":{"login":"alice"}},
				{"number":21,"title":"[Telemetry] tor-relay","comments":3,"body":"[TELEMETRY] RAM:900 STATUS:BROKEN","user":{"login":"mallory"}}
			]}`)
		default:
			t.Errorf("unexpected query %q", q)
			fmt.Fprint(w, `{"total_count":0,"items":[]}`)
		}
	})

	mux.HandleFunc("/repos/dreamswag/ci5.dev/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"body":"works for me\n[TELEMETRY] RAM:600 STATUS:stable","user":{"login":"bob"},"created_at":"2025-01-02T00:00:00Z"},
			{"body":"+1 no data here","user":{"login":"carol"}}
		]`)
	})

	mux.HandleFunc("/repos/dreamswag/ci5.dev/issues/8/comments", func(w http.ResponseWriter, r *http.Request) {
		t.Error("comments of unrelated issues must not be fetched")
	})

	mux.HandleFunc("/repos/dreamswag/ci5.dev/issues/21/comments", func(w http.ResponseWriter, r *http.Request) {
		t.Error("comments of tor-relay reports must not be fetched for tor")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	p := NewProvider(srv.Client(), srv.URL, "dreamswag/ci5.dev")

	user, err := p.CurrentUser(context.Background(), "gho_good")
	require.NoError(t, err)
	assert.Equal(t, "octo", user.Login)
	assert.Equal(t, "https://avatars.example/octo.png", user.AvatarURL)
}

func TestCurrentUserUnauthorized(t *testing.T) {
	srv := newTestServer(t)
	p := NewProvider(srv.Client(), srv.URL, "dreamswag/ci5.dev")

	_, err := p.CurrentUser(context.Background(), "gho_revoked")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnauthorized), "got %v", err)
	assert.True(t, errors.Is(err, common.ErrRejected), "got %v", err)
}

func TestCurrentUserServerErrorIsRejected(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"message":"nope"}`)
		}))
		p := NewProvider(srv.Client(), srv.URL, "dreamswag/ci5.dev")

		_, err := p.CurrentUser(context.Background(), "gho_good")
		srv.Close()
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrRejected), "status %d: got %v", status, err)
		assert.False(t, errors.Is(err, common.ErrUnauthorized), "status %d", status)
	}
}

func TestCurrentUserTransportError(t *testing.T) {
	srv := newTestServer(t)
	srv.Close()
	p := NewProvider(&http.Client{Timeout: time.Second}, srv.URL, "dreamswag/ci5.dev")

	_, err := p.CurrentUser(context.Background(), "gho_good")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrUnauthorized))
	assert.False(t, errors.Is(err, common.ErrRejected))
}

func TestListSignals(t *testing.T) {
	srv := newTestServer(t)
	p := NewProvider(srv.Client(), srv.URL, "dreamswag/ci5.dev")

	signals, err := p.ListSignals(context.Background(), "", "adguard")
	require.NoError(t, err)
	require.Len(t, signals, 2)

	assert.Equal(t, "alice", signals[0].Author)
	assert.Equal(t, 400, signals[0].RAMMB)
	assert.Equal(t, "STABLE", signals[0].Status)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), signals[0].CreatedAt.UTC())

	assert.Equal(t, "bob", signals[1].Author)
	assert.Equal(t, 600, signals[1].RAMMB)
	assert.Equal(t, "STABLE", signals[1].Status)
}

func TestListSignalsIgnoresCorksSharingAPrefix(t *testing.T) {
	srv := newTestServer(t)
	p := NewProvider(srv.Client(), srv.URL, "dreamswag/ci5.dev")

	signals, err := p.ListSignals(context.Background(), "", "tor")
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, 100, signals[0].RAMMB)
	assert.Equal(t, "STABLE", signals[0].Status)
}

func TestListSignalsBadRepo(t *testing.T) {
	p := NewProvider(http.DefaultClient, "", "not-a-repo")
	_, err := p.ListSignals(context.Background(), "", "adguard")
	assert.ErrorIs(t, err, common.ErrInvalidRepository)
}
