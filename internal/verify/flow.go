// Package verify runs the hardware challenge: a one-time code is
// registered with the vendor service, the user runs it on their device
// and the client polls until the service reports the session verified.
package verify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/metrics"
	"github.com/dreamswag/ci5dev/internal/poller"
)

var (
	ErrServiceUnavailable = errors.New("verification service unavailable")
	ErrTimeout            = errors.New("timed out waiting for hardware verification")
)

var tracer = otel.Tracer("github.com/dreamswag/ci5dev/internal/verify")

type State int

const (
	StateUnverified State = iota
	StateChallengeRequested
	StateChallengeDisplayed
	StatePolling
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateChallengeRequested:
		return "challenge-requested"
	case StateChallengeDisplayed:
		return "challenge-displayed"
	case StatePolling:
		return "polling"
	case StateVerified:
		return "verified"
	default:
		return "unverified"
	}
}

type EventKind string

const (
	EventChallengeIssued EventKind = "challenge_issued"
	EventVerified        EventKind = "verified"
	EventCancelled       EventKind = "cancelled"
	EventTimeout         EventKind = "timeout"
	EventFailed          EventKind = "failed"
	EventReset           EventKind = "reset"
)

type Event struct {
	Kind       EventKind
	State      State
	Challenge  string
	Command    string
	HardwareID string
	Err        error
}

type Listener func(Event)

// Action is a deferred privileged operation.
type Action func()

type Flow struct {
	service domain.VerificationService
	store   domain.SessionRepository
	poller  *poller.Supervisor
	metrics *metrics.Metrics

	interval     time.Duration
	timeout      time.Duration
	challengeTTL time.Duration
	sessionTTL   time.Duration
	now          func() time.Time

	mu         sync.Mutex
	state      State
	hardwareID string
	verifiedAt time.Time
	pending    Action
	challenge  string
	listeners  []Listener
}

type Option func(*Flow)

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Flow) { f.metrics = m }
}

func WithPollInterval(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.interval = d
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithChallengeTTL(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.challengeTTL = d
		}
	}
}

// WithSessionTTL sets how long a verification stays valid. Zero keeps it
// valid for the life of the process.
func WithSessionTTL(d time.Duration) Option {
	return func(f *Flow) { f.sessionTTL = d }
}

func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		if now != nil {
			f.now = now
		}
	}
}

func NewFlow(service domain.VerificationService, store domain.SessionRepository, sup *poller.Supervisor, opts ...Option) *Flow {
	f := &Flow{
		service:      service,
		store:        store,
		poller:       sup,
		interval:     2 * time.Second,
		timeout:      5 * time.Minute,
		challengeTTL: 5 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Subscribe(l Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
}

func (f *Flow) emit(ev Event) {
	f.mu.Lock()
	ev.State = f.state
	listeners := append([]Listener(nil), f.listeners...)
	f.mu.Unlock()

	f.metrics.FlowEvent("verify", string(ev.Kind))
	for _, l := range listeners {
		l(ev)
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// IsVerified reports whether the session is verified and the
// verification has not outlived the session TTL.
func (f *Flow) IsVerified() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifiedLocked()
}

func (f *Flow) verifiedLocked() bool {
	if f.state != StateVerified {
		return false
	}
	if f.sessionTTL > 0 && f.now().Sub(f.verifiedAt) > f.sessionTTL {
		f.state = StateUnverified
		f.hardwareID = ""
		logger.Log("Verify: hardware session expired")
		return false
	}
	return true
}

func (f *Flow) HardwareID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hardwareID
}

// Challenge returns the challenge currently displayed, if any.
func (f *Flow) Challenge() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.challenge
}

// SetPending stores the single deferred action, replacing any earlier one.
func (f *Flow) SetPending(a Action) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		logger.Log("Verify: replacing pending action")
	}
	f.pending = a
}

func (f *Flow) HasPending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending != nil
}

// RequestVerification registers a fresh challenge and starts polling.
// Any poll already running is cancelled first. On failure the pending
// action is dropped.
func (f *Flow) RequestVerification(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "verify.RequestVerification")
	defer span.End()

	done := f.poller.Done(poller.KindVerification)
	f.poller.Stop(poller.KindVerification)
	<-done

	challenge, err := NewChallenge()
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.state = StateChallengeRequested
	f.challenge = ""
	f.mu.Unlock()

	sessionID := f.store.SessionID()
	if err := f.service.CreateChallenge(ctx, challenge, sessionID, f.now().Add(f.challengeTTL)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "challenge create failed")
		logger.LogError("CREATE_CHALLENGE", sessionID, err)

		f.mu.Lock()
		f.state = StateUnverified
		f.pending = nil
		f.mu.Unlock()

		err = fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		f.emit(Event{Kind: EventFailed, Err: err})
		return "", err
	}

	f.mu.Lock()
	f.state = StateChallengeDisplayed
	f.challenge = challenge
	f.mu.Unlock()

	logger.Log("Verify: challenge %s registered for session %s", challenge, sessionID)
	f.emit(Event{Kind: EventChallengeIssued, Challenge: challenge, Command: Command(challenge)})

	f.PollVerification()
	return challenge, nil
}

// PollVerification checks the session every poll interval until it is
// verified or the timeout passes. It replaces any running verification
// poll.
func (f *Flow) PollVerification() {
	f.mu.Lock()
	f.state = StatePolling
	f.mu.Unlock()

	sessionID := f.store.SessionID()
	f.poller.Start(poller.KindVerification, func(ctx context.Context) {
		f.poll(ctx, sessionID)
	})
}

func (f *Flow) poll(ctx context.Context, sessionID string) {
	ctx, span := tracer.Start(ctx, "verify.PollVerification")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				logger.Log("Verify: no verification after %s", f.timeout)
				f.metrics.PollAttempt(string(poller.KindVerification), "timeout")
				f.mu.Lock()
				f.state = StateUnverified
				f.challenge = ""
				f.pending = nil
				f.mu.Unlock()
				f.emit(Event{Kind: EventTimeout, Err: ErrTimeout})
			}
			return
		case <-ticker.C:
		}

		status, err := f.service.CheckStatus(ctx, sessionID)
		if err != nil {
			if ctx.Err() == nil {
				f.metrics.PollAttempt(string(poller.KindVerification), "error")
				logger.LogError("VERIFY_POLL", sessionID, err)
			}
			continue
		}
		if !status.Verified {
			f.metrics.PollAttempt(string(poller.KindVerification), "pending")
			continue
		}

		f.metrics.PollAttempt(string(poller.KindVerification), "verified")
		if f.complete(ctx, status.HardwareID) {
			span.SetStatus(codes.Ok, "")
			return
		}
		// Cancelled or timed out; the next select reports which.
	}
}

// complete marks the session verified and runs the pending action, if
// any, exactly once. A poll cancelled before the lock is taken leaves
// the flow untouched, since Cancel and Reset stop the poll first.
func (f *Flow) complete(ctx context.Context, hwid string) bool {
	f.mu.Lock()
	if ctx.Err() != nil {
		f.mu.Unlock()
		return false
	}
	f.state = StateVerified
	f.hardwareID = hwid
	f.verifiedAt = f.now()
	f.challenge = ""
	action := f.pending
	f.pending = nil
	f.mu.Unlock()

	logger.Log("Verify: hardware verified (%s...)", shortID(hwid))
	f.emit(Event{Kind: EventVerified, HardwareID: hwid})

	if action != nil {
		action()
	}
	return true
}

// Cancel stops polling and drops the pending action, as when the
// challenge dialog is dismissed.
func (f *Flow) Cancel() {
	f.poller.Stop(poller.KindVerification)

	f.mu.Lock()
	f.pending = nil
	f.challenge = ""
	wasWaiting := f.state != StateVerified && f.state != StateUnverified
	if wasWaiting {
		f.state = StateUnverified
	}
	f.mu.Unlock()

	if wasWaiting {
		logger.Log("Verify: challenge dismissed")
		f.emit(Event{Kind: EventCancelled})
	}
}

// CheckExisting adopts a session the service already knows as verified.
// Errors are logged and otherwise ignored.
func (f *Flow) CheckExisting(ctx context.Context) bool {
	ctx, span := tracer.Start(ctx, "verify.CheckExisting")
	defer span.End()

	sessionID := f.store.SessionID()
	status, err := f.service.CheckStatus(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		logger.LogError("VERIFY_CHECK", sessionID, err)
		return false
	}
	if !status.Verified {
		return false
	}

	f.mu.Lock()
	f.state = StateVerified
	f.hardwareID = status.HardwareID
	f.verifiedAt = f.now()
	f.mu.Unlock()

	logger.Log("Verify: session already verified (%s...)", shortID(status.HardwareID))
	f.emit(Event{Kind: EventVerified, HardwareID: status.HardwareID})
	return true
}

// Reset forgets the verification, as on logout.
func (f *Flow) Reset() {
	f.poller.Stop(poller.KindVerification)

	f.mu.Lock()
	f.state = StateUnverified
	f.hardwareID = ""
	f.verifiedAt = time.Time{}
	f.pending = nil
	f.challenge = ""
	f.mu.Unlock()

	f.emit(Event{Kind: EventReset})
}

func shortID(hwid string) string {
	if len(hwid) > 8 {
		return hwid[:8]
	}
	return hwid
}
