package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dreamswag/ci5dev/internal/app"
	"github.com/dreamswag/ci5dev/internal/domain"
	"github.com/dreamswag/ci5dev/internal/gate"
	"github.com/dreamswag/ci5dev/internal/provider/common"
	"github.com/dreamswag/ci5dev/internal/submission"
)

type gatedAction func(ctx context.Context, done func(app.IssueResult)) (gate.Outcome, error)

// runGated sends one action through the gate and waits for its issue to
// be composed, walking the user through verification when needed.
func runGated(ctx context.Context, out io.Writer, a *app.App, action gatedAction) error {
	a.Startup(ctx)
	if !a.Auth.LoggedIn() {
		return errNotLoggedIn
	}

	results := make(chan app.IssueResult, 1)
	w := watchVerification(a)
	outcome, err := action(ctx, func(res app.IssueResult) { results <- res })
	if err != nil {
		return err
	}

	switch outcome {
	case gate.OutcomeExecuted:
		return reportIssue(out, <-results)
	case gate.OutcomeVerificationPending:
		warn(out, "Hardware verification required")
		return w.wait(ctx, out, results)
	default:
		return errNotLoggedIn
	}
}

func reportIssue(out io.Writer, res app.IssueResult) error {
	if res.Err != nil {
		if res.Issue.URL != "" {
			info(out, "Open this link to file the issue:\n    %s", res.Issue.URL)
		}
		return fmt.Errorf("compose issue: %s", common.ExtractErrorMessage(res.Err))
	}
	success(out, "Issue composer opened: %s", res.Issue.Title)
	return nil
}

func (c *cli) submitCmd() *cobra.Command {
	var sub domain.Submission

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Propose a new cork",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := submission.ValidateSubmission(sub); err != nil {
				return err
			}
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return runGated(cmd.Context(), cmd.OutOrStdout(), a, func(ctx context.Context, done func(app.IssueResult)) (gate.Outcome, error) {
				return a.Submit(ctx, sub, done)
			})
		},
	}

	cmd.Flags().StringVar(&sub.Name, "name", "", "cork name (required)")
	cmd.Flags().StringVar(&sub.Repo, "repo", "", "GitHub repository, owner/name or URL (required)")
	cmd.Flags().StringVar(&sub.Description, "desc", "", "short description")
	cmd.Flags().StringVar(&sub.RAM, "ram", "", "expected RAM, e.g. 128MB")
	return cmd
}

func (c *cli) voteCmd() *cobra.Command {
	var (
		ram    int
		status string
	)

	cmd := &cobra.Command{
		Use:   "vote <key>",
		Short: "Report RAM use and stability for a cork",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := submission.ValidateVote(args[0], ram, domain.SignalStatus(status))
			if err != nil {
				return err
			}
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			return runGated(cmd.Context(), cmd.OutOrStdout(), a, func(ctx context.Context, done func(app.IssueResult)) (gate.Outcome, error) {
				return a.Vote(ctx, args[0], ram, st, done)
			})
		},
	}

	cmd.Flags().IntVar(&ram, "ram", 0, "measured RAM in MB (required)")
	cmd.Flags().StringVar(&status, "status", string(domain.SignalStable), "STABLE, UNSTABLE or BROKEN")
	return cmd
}
