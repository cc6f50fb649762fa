// Package gate guards privileged actions behind login and hardware
// verification.
package gate

import (
	"context"

	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/verify"
)

type Outcome int

const (
	// OutcomeLoginRequired means a login was started and the action was
	// dropped; the user triggers it again once logged in.
	OutcomeLoginRequired Outcome = iota
	OutcomeExecuted
	// OutcomeVerificationPending means the action is the pending action
	// of a verification that is now in progress.
	OutcomeVerificationPending
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeVerificationPending:
		return "verification-pending"
	default:
		return "login-required"
	}
}

type Authenticator interface {
	LoggedIn() bool
	StartLogin(ctx context.Context) error
}

type Verifier interface {
	IsVerified() bool
	SetPending(a verify.Action)
	RequestVerification(ctx context.Context) (string, error)
}

type Gate struct {
	auth   Authenticator
	verify Verifier
}

func New(auth Authenticator, v Verifier) *Gate {
	return &Gate{auth: auth, verify: v}
}

// RequireHardwareVerification runs action now if the session is logged in
// and verified. A logged-out session starts a login instead. Otherwise the
// action replaces any pending one and a verification is requested; the
// returned error is that request's failure.
func (g *Gate) RequireHardwareVerification(ctx context.Context, action verify.Action) (Outcome, error) {
	if !g.auth.LoggedIn() {
		logger.Log("Gate: login required")
		return OutcomeLoginRequired, g.auth.StartLogin(ctx)
	}

	if g.verify.IsVerified() {
		action()
		return OutcomeExecuted, nil
	}

	logger.Log("Gate: hardware verification required")
	g.verify.SetPending(action)
	_, err := g.verify.RequestVerification(ctx)
	return OutcomeVerificationPending, err
}
