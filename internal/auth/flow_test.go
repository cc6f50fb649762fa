package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/poller"
	"github.com/dreamswag/ci5dev/internal/provider/common"
	ghprov "github.com/dreamswag/ci5dev/internal/provider/github"
	"github.com/dreamswag/ci5dev/internal/storage"
)

const unit = 5 * time.Millisecond

type fakeAccounts struct {
	mu    sync.Mutex
	user  *domain.User
	err   error
	calls int
}

func (f *fakeAccounts) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

// deviceServer hands out sequential device codes and answers token polls
// from a per-code script; the last scripted answer repeats.
type deviceServer struct {
	*httptest.Server

	mu       sync.Mutex
	issued   int
	interval int
	scripts  map[string][]string
	polls    map[string][]time.Time
	failCode bool
}

func newDeviceServer(t *testing.T, interval int) *deviceServer {
	ds := &deviceServer{
		interval: interval,
		scripts:  make(map[string][]string),
		polls:    make(map[string][]time.Time),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login/device/code", func(w http.ResponseWriter, r *http.Request) {
		ds.mu.Lock()
		defer ds.mu.Unlock()
		if ds.failCode {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "public_repo", r.PostForm.Get("scope"))

		ds.issued++
		resp := map[string]any{
			"device_code":      fmt.Sprintf("dc-%d", ds.issued),
			"user_code":        fmt.Sprintf("USER-%04d", ds.issued),
			"verification_uri": "https://github.com/login/device",
			"expires_in":       900,
		}
		if ds.interval > 0 {
			resp["interval"] = ds.interval
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, deviceGrantType, r.PostForm.Get("grant_type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		code := r.PostForm.Get("device_code")

		ds.mu.Lock()
		ds.polls[code] = append(ds.polls[code], time.Now())
		script := ds.scripts[code]
		answer := "authorization_pending"
		if len(script) > 0 {
			answer = script[0]
			if len(script) > 1 {
				ds.scripts[code] = script[1:]
			}
		}
		ds.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if len(answer) > 4 && answer[:4] == "tok:" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": answer[4:], "token_type": "bearer"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"error": answer})
	})

	ds.Server = httptest.NewServer(mux)
	t.Cleanup(ds.Close)
	return ds
}

func (ds *deviceServer) script(code string, answers ...string) {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	ds.scripts[code] = answers
}

func (ds *deviceServer) pollCount(code string) int {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return len(ds.polls[code])
}

func (ds *deviceServer) pollTimes(code string) []time.Time {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return append([]time.Time(nil), ds.polls[code]...)
}

func (ds *deviceServer) oauthConfig() oauth2.Config {
	return oauth2.Config{
		ClientID: "client-id",
		Scopes:   []string{"public_repo"},
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: ds.URL + "/login/device/code",
			TokenURL:      ds.URL + "/login/oauth/access_token",
		},
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}
	}
	return r.events[len(r.events)-1]
}

type fixture struct {
	server   *deviceServer
	store    *storage.LocalRepository
	accounts *fakeAccounts
	sup      *poller.Supervisor
	flow     *Flow
	events   *recorder
}

func newFixture(t *testing.T, interval int, opts ...Option) *fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	fx := &fixture{
		server:   newDeviceServer(t, interval),
		store:    storage.NewMemoryRepository(),
		accounts: &fakeAccounts{user: &domain.User{Login: "octocat", AvatarURL: "https://avatars.example/1"}},
		sup:      poller.NewSupervisor(ctx),
		events:   &recorder{},
	}
	opts = append([]Option{WithHTTPClient(fx.server.Client()), WithIntervalUnit(unit)}, opts...)
	fx.flow = NewFlow(fx.server.oauthConfig(), fx.store, fx.accounts, fx.sup, opts...)
	fx.flow.Subscribe(fx.events.listen)
	return fx
}

func TestStartDeviceAuthLogsIn(t *testing.T) {
	fx := newFixture(t, 1)
	fx.server.script("dc-1", "authorization_pending", "authorization_pending", "tok:gho_secret")

	code, err := fx.flow.StartDeviceAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "USER-0001", code.UserCode)
	assert.Equal(t, "https://github.com/login/device", code.VerificationURI)
	assert.Equal(t, 1, code.Interval)

	require.Eventually(t, fx.flow.LoggedIn, 2*time.Second, unit)
	assert.Equal(t, "gho_secret", fx.store.Token())
	assert.Equal(t, StateLoggedIn, fx.flow.State())
	assert.Equal(t, "octocat", fx.flow.User().Login)
	assert.Equal(t, 3, fx.server.pollCount("dc-1"))
	assert.Equal(t, []EventKind{EventCodeIssued, EventLoggedIn}, fx.events.kinds())

	<-fx.sup.Done(poller.KindToken)
	assert.False(t, fx.sup.Active(poller.KindToken), "poll stops after success")
}

func TestPollPeriodAddsOneInterval(t *testing.T) {
	fx := newFixture(t, 4)
	fx.server.script("dc-1", "authorization_pending", "tok:t")

	_, err := fx.flow.StartDeviceAuth(context.Background())
	require.NoError(t, err)
	require.Eventually(t, fx.flow.LoggedIn, 2*time.Second, unit)

	polls := fx.server.pollTimes("dc-1")
	require.Len(t, polls, 2)
	assert.GreaterOrEqual(t, polls[1].Sub(polls[0]), 5*unit-unit/2)
}

func TestMissingIntervalDefaultsToFive(t *testing.T) {
	fx := newFixture(t, 0)

	code, err := fx.flow.StartDeviceAuth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, code.Interval)
	fx.flow.Cancel()
}

func TestSlowDownBacksOff(t *testing.T) {
	fx := newFixture(t, 1)
	fx.server.script("dc-1", "slow_down", "tok:t")

	_, err := fx.flow.StartDeviceAuth(context.Background())
	require.NoError(t, err)
	require.Eventually(t, fx.flow.LoggedIn, 2*time.Second, unit)

	polls := fx.server.pollTimes("dc-1")
	require.Len(t, polls, 2)
	// interval 1 becomes 6, so the next poll waits (6+1) units.
	assert.GreaterOrEqual(t, polls[1].Sub(polls[0]), 7*unit-unit/2)
}

func TestSecondDeviceAuthCancelsFirstPoll(t *testing.T) {
	fx := newFixture(t, 1)

	_, err := fx.flow.StartDeviceAuth(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return fx.server.pollCount("dc-1") >= 2 }, 2*time.Second, unit)

	_, err = fx.flow.StartDeviceAuth(context.Background())
	require.NoError(t, err)
	frozen := fx.server.pollCount("dc-1")

	require.Eventually(t, func() bool { return fx.server.pollCount("dc-2") >= 3 }, 2*time.Second, unit)
	assert.Equal(t, frozen, fx.server.pollCount("dc-1"), "first poll must not run alongside the second")
	assert.True(t, fx.sup.Active(poller.KindToken))
	fx.flow.Cancel()
}

func TestAccessDeniedReturnsToLoggedOut(t *testing.T) {
	for _, answer := range []string{"access_denied", "expired_token"} {
		t.Run(answer, func(t *testing.T) {
			fx := newFixture(t, 1)
			fx.server.script("dc-1", "authorization_pending", answer)

			_, err := fx.flow.StartDeviceAuth(context.Background())
			require.NoError(t, err)

			require.Eventually(t, func() bool { return fx.events.last().Kind == EventFailed }, 2*time.Second, unit)
			assert.Equal(t, StateLoggedOut, fx.flow.State())
			assert.Empty(t, fx.store.Token())
			<-fx.sup.Done(poller.KindToken)
			assert.Equal(t, 2, fx.server.pollCount("dc-1"))
		})
	}
}

func TestPollTimeout(t *testing.T) {
	fx := newFixture(t, 1, WithTimeout(60*time.Millisecond))

	_, err := fx.flow.StartDeviceAuth(context.Background())
	require.NoError(t, err)

	require.Eventually(t, func() bool { return fx.events.last().Kind == EventTimeout }, 2*time.Second, unit)
	assert.ErrorIs(t, fx.events.last().Err, ErrTimeout)
	assert.Equal(t, StateLoggedOut, fx.flow.State())
	<-fx.sup.Done(poller.KindToken)
	assert.False(t, fx.sup.Active(poller.KindToken))
}

func TestDeviceCodeFailure(t *testing.T) {
	fx := newFixture(t, 1)
	fx.server.mu.Lock()
	fx.server.failCode = true
	fx.server.mu.Unlock()

	_, err := fx.flow.StartDeviceAuth(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateLoggedOut, fx.flow.State())
	assert.Equal(t, EventFailed, fx.events.last().Kind)
	assert.False(t, fx.sup.Active(poller.KindToken))
}

func TestCancelStopsPolling(t *testing.T) {
	fx := newFixture(t, 1)

	_, err := fx.flow.StartDeviceAuth(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return fx.server.pollCount("dc-1") >= 1 }, 2*time.Second, unit)

	done := fx.sup.Done(poller.KindToken)
	fx.flow.Cancel()
	<-done
	polled := fx.server.pollCount("dc-1")

	time.Sleep(10 * unit)
	assert.Equal(t, polled, fx.server.pollCount("dc-1"))
	assert.Equal(t, StateLoggedOut, fx.flow.State())
	assert.Equal(t, EventCancelled, fx.events.last().Kind)
}

func TestCheckAuth(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		fx := newFixture(t, 1)
		user, err := fx.flow.CheckAuth(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.Zero(t, fx.accounts.calls)
	})

	t.Run("valid token", func(t *testing.T) {
		fx := newFixture(t, 1)
		fx.store.SetToken("gho_valid")
		user, err := fx.flow.CheckAuth(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "octocat", user.Login)
		assert.True(t, fx.flow.LoggedIn())
	})

	t.Run("revoked token logs out", func(t *testing.T) {
		fx := newFixture(t, 1)
		fx.store.SetToken("gho_revoked")
		session := fx.store.SessionID()
		fx.accounts.err = fmt.Errorf("GET /user: %w", common.ErrRejected)

		_, err := fx.flow.CheckAuth(context.Background())
		assert.ErrorIs(t, err, common.ErrRejected)
		assert.Empty(t, fx.store.Token())
		assert.NotEqual(t, session, fx.store.SessionID())
		assert.Equal(t, EventLoggedOut, fx.events.last().Kind)
	})

	t.Run("transport failure keeps token", func(t *testing.T) {
		fx := newFixture(t, 1)
		fx.store.SetToken("gho_kept")
		fx.accounts.err = fmt.Errorf("dial tcp: connection refused")

		_, err := fx.flow.CheckAuth(context.Background())
		assert.Error(t, err)
		assert.Equal(t, "gho_kept", fx.store.Token())
		assert.False(t, fx.flow.LoggedIn())
	})
}

func TestCheckAuthNonSuccessStatusLogsOut(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				fmt.Fprint(w, `{"message":"nope"}`)
			}))
			t.Cleanup(api.Close)

			fx := newFixture(t, 1)
			flow := NewFlow(fx.server.oauthConfig(), fx.store,
				ghprov.NewProvider(api.Client(), api.URL, "dreamswag/ci5.dev"), fx.sup,
				WithHTTPClient(fx.server.Client()), WithIntervalUnit(unit))
			fx.store.SetToken("gho_revoked")
			session := fx.store.SessionID()

			user, err := flow.CheckAuth(context.Background())
			assert.Nil(t, user)
			assert.ErrorIs(t, err, common.ErrRejected)
			assert.Empty(t, fx.store.Token())
			assert.NotEqual(t, session, fx.store.SessionID())
			assert.False(t, flow.LoggedIn())
		})
	}
}

func TestLogout(t *testing.T) {
	fx := newFixture(t, 1)
	fx.store.SetToken("gho_valid")
	_, err := fx.flow.CheckAuth(context.Background())
	require.NoError(t, err)
	session := fx.store.SessionID()

	var seen atomic.Bool
	fx.flow.Subscribe(func(ev Event) {
		if ev.Kind == EventLoggedOut {
			seen.Store(true)
		}
	})

	fx.flow.Logout()
	assert.False(t, fx.flow.LoggedIn())
	assert.Empty(t, fx.store.Token())
	assert.NotEqual(t, session, fx.store.SessionID())
	assert.True(t, seen.Load())
}
