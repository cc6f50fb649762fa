package telemetry

import (
	"context"

	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/logger"
)

// Service aggregates community signals for a cork. Lookups never fail:
// an unreachable tracker yields a summary flagged NoSignal.
type Service struct {
	provider domain.SignalProvider
	token    func() string
}

func NewService(provider domain.SignalProvider, token func() string) *Service {
	if token == nil {
		token = func() string { return "" }
	}
	return &Service{provider: provider, token: token}
}

func (s *Service) Summary(ctx context.Context, cork string) domain.SignalSummary {
	signals, err := s.provider.ListSignals(ctx, s.token(), cork)
	if err != nil {
		logger.LogError("TELEMETRY", cork, err)
		summary := Summarize(cork, nil)
		summary.NoSignal = true
		return summary
	}

	logger.Log("Telemetry: %d signals for %s", len(signals), cork)
	return Summarize(cork, signals)
}
