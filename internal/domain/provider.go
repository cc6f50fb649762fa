package domain

import (
	"context"
	"time"
)

// VerificationService is the vendor endpoint that issues hardware
// challenges and reports whether a device has answered one.
type VerificationService interface {
	CreateChallenge(ctx context.Context, challenge, sessionID string, expires time.Time) error

	CheckStatus(ctx context.Context, sessionID string) (VerificationStatus, error)
}

type AccountProvider interface {
	CurrentUser(ctx context.Context, token string) (*User, error)
}

type SignalProvider interface {
	ListSignals(ctx context.Context, token, cork string) ([]TelemetrySignal, error)
}
