package app

import (
	"context"

	"github.com/dreamswag/ci5dev/internal/config"
	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/gate"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/storage"
	"github.com/dreamswag/ci5dev/internal/submission"
)

// IssueResult reports a composed issue once the gate let it through.
// Err is set when composing failed or the browser could not be opened;
// the issue URL is still filled in for the latter so it can be shown.
type IssueResult struct {
	Issue submission.Issue
	Vote  *domain.Vote
	Err   error
}

// Submit proposes a new cork. Fields are checked before the gate so a
// broken form never starts a login or a challenge; such errors wrap
// submission.ErrMissingField and carry no meaningful outcome. done runs
// when the gated action runs, which may be much later, on the
// verification poll's goroutine.
func (a *App) Submit(ctx context.Context, sub domain.Submission, done func(IssueResult)) (gate.Outcome, error) {
	if err := submission.ValidateSubmission(sub); err != nil {
		return gate.OutcomeLoginRequired, err
	}

	return a.Gate.RequireHardwareVerification(ctx, func() {
		issue, err := a.Composer.Submission(sub, a.Login(), a.Verify.HardwareID())
		if err == nil {
			logger.Log("Submit: opening composer for %s", sub.Name)
			err = a.Open(issue.URL)
		}
		notify(done, IssueResult{Issue: issue, Err: err})
	})
}

// Vote reports a RAM reading and stability status for one cork through
// the same gate as Submit.
func (a *App) Vote(ctx context.Context, cork string, ramMB int, status domain.SignalStatus, done func(IssueResult)) (gate.Outcome, error) {
	status, err := submission.ValidateVote(cork, ramMB, status)
	if err != nil {
		return gate.OutcomeLoginRequired, err
	}

	return a.Gate.RequireHardwareVerification(ctx, func() {
		vote, issue, err := a.Composer.Vote(cork, ramMB, status, a.Login(), a.Verify.HardwareID())
		if err == nil {
			logger.Log("Vote: opening composer for %s (%s)", cork, status)
			err = a.Open(issue.URL)
		}
		notify(done, IssueResult{Issue: issue, Vote: &vote, Err: err})
	})
}

// Signals summarizes the community telemetry for cork.
func (a *App) Signals(ctx context.Context, cork string) domain.SignalSummary {
	return a.Telemetry.Summary(ctx, cork)
}

func notify(done func(IssueResult), res IssueResult) {
	if res.Err != nil {
		logger.LogError("ISSUE_COMPOSE", res.Issue.Title, res.Err)
	}
	if done != nil {
		done(res)
	}
}

func storageFor(cfg *config.Config) domain.SessionRepository {
	return storage.NewLocalRepository(cfg.DataDir)
}
