package auth

import "github.com/dreamswag/ci5dev/internal/domain"

type State int

const (
	StateLoggedOut State = iota
	StateDeviceCodeRequested
	StateCodeDisplayed
	StatePolling
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateDeviceCodeRequested:
		return "device-code-requested"
	case StateCodeDisplayed:
		return "code-displayed"
	case StatePolling:
		return "polling"
	case StateLoggedIn:
		return "logged-in"
	default:
		return "logged-out"
	}
}

type EventKind string

const (
	EventCodeIssued EventKind = "code_issued"
	EventLoggedIn   EventKind = "logged_in"
	EventLoggedOut  EventKind = "logged_out"
	EventCancelled  EventKind = "cancelled"
	EventTimeout    EventKind = "timeout"
	EventFailed     EventKind = "failed"
)

// Event reports a state change of the flow. Events raised by the token
// poll arrive on the poll goroutine.
type Event struct {
	Kind  EventKind
	State State
	User  *domain.User
	Code  *domain.DeviceCode
	Err   error
}

type Listener func(Event)
