// Package auth implements the OAuth device authorization grant against
// GitHub and owns the logged-in user.
package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/metrics"
	"github.com/dreamswag/ci5dev/internal/poller"
	"github.com/dreamswag/ci5dev/internal/provider/common"
)

const (
	defaultInterval = 5
	slowDownStep    = 5
)

var tracer = otel.Tracer("github.com/dreamswag/ci5dev/internal/auth")

type Flow struct {
	oauth      oauth2.Config
	httpClient *http.Client
	store      domain.SessionRepository
	accounts   domain.AccountProvider
	poller     *poller.Supervisor
	metrics    *metrics.Metrics

	timeout time.Duration
	// unit is the length of one server-advertised interval step.
	unit time.Duration

	mu        sync.Mutex
	state     State
	user      *domain.User
	listeners []Listener
}

type Option func(*Flow)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Flow) {
		if c != nil {
			f.httpClient = c
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Flow) { f.metrics = m }
}

// WithTimeout bounds how long a token poll may run.
func WithTimeout(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithIntervalUnit scales the polling interval. It is one second outside
// of tests.
func WithIntervalUnit(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.unit = d
		}
	}
}

func NewFlow(cfg oauth2.Config, store domain.SessionRepository, accounts domain.AccountProvider, sup *poller.Supervisor, opts ...Option) *Flow {
	f := &Flow{
		oauth:      cfg,
		httpClient: http.DefaultClient,
		store:      store,
		accounts:   accounts,
		poller:     sup,
		timeout:    5 * time.Minute,
		unit:       time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe registers l for every later event.
func (f *Flow) Subscribe(l Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// User returns the logged-in account, or nil.
func (f *Flow) User() *domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil
	}
	u := *f.user
	return &u
}

func (f *Flow) LoggedIn() bool {
	return f.User() != nil
}

func (f *Flow) transition(state State, user *domain.User, ev Event) {
	f.mu.Lock()
	f.state = state
	f.user = user
	listeners := append([]Listener(nil), f.listeners...)
	f.mu.Unlock()

	if ev.Kind == "" {
		return
	}
	ev.State = state
	ev.User = user
	f.metrics.FlowEvent("auth", string(ev.Kind))
	for _, l := range listeners {
		l(ev)
	}
}

func (f *Flow) setState(state State) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}

// StartDeviceAuth requests a device and user code, reports them with an
// EventCodeIssued and starts polling for the token. A poll left over from
// an earlier attempt is cancelled.
func (f *Flow) StartDeviceAuth(ctx context.Context) (domain.DeviceCode, error) {
	ctx, span := tracer.Start(ctx, "auth.StartDeviceAuth")
	defer span.End()

	done := f.poller.Done(poller.KindToken)
	f.poller.Stop(poller.KindToken)
	<-done
	f.setState(StateDeviceCodeRequested)
	logger.Log("Auth: requesting device code")

	resp, err := f.oauth.DeviceAuth(context.WithValue(ctx, oauth2.HTTPClient, f.httpClient))
	if err == nil && resp.DeviceCode == "" {
		err = ErrNoDeviceCode
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "device code request failed")
		logger.LogError("DEVICE_AUTH", f.oauth.Endpoint.DeviceAuthURL, err)
		f.transition(StateLoggedOut, f.User(), Event{Kind: EventFailed, Err: err})
		return domain.DeviceCode{}, err
	}

	interval := int(resp.Interval)
	if interval <= 0 {
		interval = defaultInterval
	}
	code := domain.DeviceCode{
		UserCode:        resp.UserCode,
		VerificationURI: resp.VerificationURI,
		Interval:        interval,
		ExpiresAt:       resp.Expiry,
	}
	span.SetAttributes(attribute.Int("auth.interval", interval))

	logger.Log("Auth: user code %s issued, verify at %s", code.UserCode, code.VerificationURI)
	f.transition(StateCodeDisplayed, f.User(), Event{Kind: EventCodeIssued, Code: &code})

	f.PollForToken(resp.DeviceCode, interval)
	return code, nil
}

// StartLogin is StartDeviceAuth for callers that only need to know it
// started; the code reaches them through EventCodeIssued.
func (f *Flow) StartLogin(ctx context.Context) error {
	_, err := f.StartDeviceAuth(ctx)
	return err
}

// PollForToken polls the token endpoint every interval+1 steps until a
// token arrives, the user denies access, the code expires or the timeout
// passes. It replaces any running token poll.
func (f *Flow) PollForToken(deviceCode string, interval int) {
	f.setState(StatePolling)
	f.poller.Start(poller.KindToken, func(ctx context.Context) {
		f.poll(ctx, deviceCode, interval)
	})
}

func (f *Flow) period(interval int) time.Duration {
	return time.Duration(interval+1) * f.unit
}

func (f *Flow) poll(ctx context.Context, deviceCode string, interval int) {
	ctx, span := tracer.Start(ctx, "auth.PollForToken")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	ticker := time.NewTicker(f.period(interval))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logger.Log("Auth: gave up waiting for authorization after %s", f.timeout)
				f.metrics.PollAttempt(string(poller.KindToken), "timeout")
				f.transition(StateLoggedOut, nil, Event{Kind: EventTimeout, Err: ErrTimeout})
			}
			return
		case <-ticker.C:
		}

		token, err := f.requestToken(ctx, deviceCode)
		switch {
		case err == nil:
			f.metrics.PollAttempt(string(poller.KindToken), "token")
			if ctx.Err() != nil {
				return
			}
			f.store.SetToken(token)
			logger.Log("Auth: access token received")
			span.SetStatus(codes.Ok, "")
			f.validate(ctx)
			return

		case errors.Is(err, errPending):
			f.metrics.PollAttempt(string(poller.KindToken), "pending")

		case errors.Is(err, errSlowDown):
			f.metrics.PollAttempt(string(poller.KindToken), "slow_down")
			interval += slowDownStep
			ticker.Reset(f.period(interval))
			logger.Log("Auth: slow_down received, polling every %s", f.period(interval))

		case errors.Is(err, ErrAccessDenied), errors.Is(err, ErrExpired):
			f.metrics.PollAttempt(string(poller.KindToken), "rejected")
			span.RecordError(err)
			logger.LogError("TOKEN_POLL", f.oauth.Endpoint.TokenURL, err)
			f.transition(StateLoggedOut, nil, Event{Kind: EventFailed, Err: err})
			return

		default:
			if ctx.Err() != nil {
				continue
			}
			f.metrics.PollAttempt(string(poller.KindToken), "error")
			logger.LogError("TOKEN_POLL", f.oauth.Endpoint.TokenURL, err)
		}
	}
}

// CheckAuth validates the cached token. Any non-success answer from the
// identity endpoint logs the user out; a transport failure leaves the
// token in place but reports no user.
func (f *Flow) CheckAuth(ctx context.Context) (*domain.User, error) {
	if f.store.Token() == "" {
		f.transition(StateLoggedOut, nil, Event{})
		return nil, nil
	}
	return f.validate(ctx)
}

func (f *Flow) validate(ctx context.Context) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "auth.CheckAuth")
	defer span.End()

	user, err := f.accounts.CurrentUser(ctx, f.store.Token())
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, common.ErrRejected) {
			logger.Log("Auth: cached token rejected, logging out")
			f.logout()
			return nil, err
		}
		logger.LogError("CHECK_AUTH", "", err)
		f.transition(StateLoggedOut, nil, Event{Kind: EventFailed, Err: err})
		return nil, err
	}

	f.transition(StateLoggedIn, user, Event{Kind: EventLoggedIn})
	u := *user
	return &u, nil
}

// Cancel abandons an in-progress login, as when the code dialog is closed.
func (f *Flow) Cancel() {
	f.poller.Stop(poller.KindToken)

	f.mu.Lock()
	state := f.state
	f.mu.Unlock()
	if state == StateLoggedIn || state == StateLoggedOut {
		return
	}

	logger.Log("Auth: login cancelled")
	f.transition(StateLoggedOut, nil, Event{Kind: EventCancelled})
}

// Logout stops polling, forgets the token and user and starts a fresh
// session.
func (f *Flow) Logout() {
	logger.Log("Auth: logging out")
	f.logout()
}

func (f *Flow) logout() {
	f.poller.Stop(poller.KindToken)
	f.store.ClearToken()
	f.store.ResetSession()
	f.transition(StateLoggedOut, nil, Event{Kind: EventLoggedOut})
}
