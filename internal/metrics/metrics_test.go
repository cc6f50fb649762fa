package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersRecord(t *testing.T) {
	m := New()

	m.ObserveHTTP("api.github.com", "GET", 200, 30*time.Millisecond)
	m.ObserveHTTP("api.github.com", "GET", 200, 10*time.Millisecond)
	m.ObserveHTTP("api.ci5.network", "POST", 0, time.Millisecond)
	m.PollAttempt("verification", "pending")
	m.SourceFetch("external", "error")
	m.FlowEvent("auth", "logged_in")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("api.github.com", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("api.ci5.network", "POST", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pollAttempts.WithLabelValues("verification", "pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sourceFetch.WithLabelValues("external", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flowEvents.WithLabelValues("auth", "logged_in")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("h", "GET", 200, time.Second)
		m.PollAttempt("token", "ok")
		m.SourceFetch("primary", "ok")
		m.FlowEvent("verify", "verified")
	})
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesNamespace(t *testing.T) {
	m := New(WithNamespace("test"))
	m.PollAttempt("token", "authorization_pending")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `test_poll_attempts_total{kind="token",outcome="authorization_pending"} 1`), string(body))
}
