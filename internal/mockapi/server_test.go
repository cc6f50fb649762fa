package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamswag/ci5dev/internal/metrics"
)

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestChallengeLifecycle(t *testing.T) {
	srv := httptest.NewServer(NewServer().Router())
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/v1/challenge/create", map[string]any{
		"challenge":  "ci5_abc123",
		"session_id": "sess-1",
		"expires":    time.Now().Add(time.Minute).UnixMilli(),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var identity struct {
		Verified bool   `json:"verified"`
		HWID     string `json:"hwid"`
	}
	resp, err := http.Get(srv.URL + "/v1/identity/check?session=sess-1")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&identity))
	resp.Body.Close()
	assert.False(t, identity.Verified)

	resp = postJSON(t, srv.URL+"/v1/challenge/complete", CompleteRequest{Challenge: "ci5_abc123", HWID: "deadbeefcafe"})
	var completed CompleteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&completed))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "deadbeefcafe", completed.HWID)

	resp, err = http.Get(srv.URL + "/v1/identity/check?session=sess-1")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&identity))
	resp.Body.Close()
	assert.True(t, identity.Verified)
	assert.Equal(t, "deadbeefcafe", identity.HWID)

	resp = postJSON(t, srv.URL+"/v1/challenge/complete", CompleteRequest{Challenge: "ci5_abc123"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "a challenge can be answered once")
}

func TestCreateChallengeValidation(t *testing.T) {
	srv := httptest.NewServer(NewServer().Router())
	defer srv.Close()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing challenge", map[string]any{"session_id": "s", "expires": time.Now().Add(time.Minute).UnixMilli()}},
		{"missing session", map[string]any{"challenge": "ci5_x", "expires": time.Now().Add(time.Minute).UnixMilli()}},
		{"already expired", map[string]any{"challenge": "ci5_x", "session_id": "s", "expires": time.Now().Add(-time.Minute).UnixMilli()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/v1/challenge/create", tt.body)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCompleteExpiredChallenge(t *testing.T) {
	store := NewStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	store.CreateChallenge("ci5_old", "s", now.Add(time.Second))

	now = now.Add(time.Minute)
	_, err := store.Complete("ci5_old", "")
	assert.ErrorIs(t, err, ErrExpiredChallenge)
}

func TestPurgeExpired(t *testing.T) {
	store := NewStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	store.CreateChallenge("ci5_a", "s1", now.Add(time.Second))
	store.CreateChallenge("ci5_b", "s2", now.Add(time.Hour))

	now = now.Add(time.Minute)
	assert.Equal(t, 1, store.PurgeExpired())
	assert.Equal(t, 1, store.Pending())
}

func TestGeneratedHardwareID(t *testing.T) {
	store := NewStore()
	store.CreateChallenge("ci5_a", "s1", time.Now().Add(time.Minute))

	hwid, err := store.Complete("ci5_a", "")
	require.NoError(t, err)
	assert.Len(t, hwid, 32)

	got, ok := store.Identity("s1")
	assert.True(t, ok)
	assert.Equal(t, hwid, got)
}

func TestManifestAndMetrics(t *testing.T) {
	m := metrics.New()
	m.PollAttempt("verification", "pending")
	srv := httptest.NewServer(NewServer(WithManifest([]byte(`{"official":{}}`)), WithMetrics(m)).Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/corks.json")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.JSONEq(t, `{"official":{}}`, string(body))

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "ci5dev_poll_attempts_total")

	plain := httptest.NewServer(NewServer().Router())
	defer plain.Close()
	resp, err = http.Get(fmt.Sprintf("%s/corks.json", plain.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
