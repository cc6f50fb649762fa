package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dreamswag/ci5dev/internal/app"
	"github.com/dreamswag/ci5dev/internal/auth"
	"github.com/dreamswag/ci5dev/internal/browser"
	"github.com/dreamswag/ci5dev/internal/provider/common"
	"github.com/dreamswag/ci5dev/internal/submission"
	"github.com/dreamswag/ci5dev/internal/verify"
)

var errNotLoggedIn = errors.New("not connected to GitHub; run `ci5dev login` first")

func (c *cli) loginCmd() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Connect GitHub with a device code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			a.Startup(ctx)
			out := cmd.OutOrStdout()
			if a.Auth.LoggedIn() {
				success(out, "Already connected as @%s", a.Login())
				return nil
			}
			return login(ctx, out, a, open)
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "open the verification page in the browser")
	return cmd
}

// login runs the device flow and blocks until it ends.
func login(ctx context.Context, out io.Writer, a *app.App, open bool) error {
	events := make(chan auth.Event, 8)
	a.Auth.Subscribe(func(ev auth.Event) {
		select {
		case events <- ev:
		default:
		}
	})

	code, err := a.Auth.StartDeviceAuth(ctx)
	if err != nil {
		return fmt.Errorf("login: %s", common.ExtractErrorMessage(err))
	}

	fmt.Fprintf(out, "Open %s and enter:\n\n    %s\n\n", code.VerificationURI, codeStyle.Render(code.UserCode))
	if browser.ClipboardAvailable() && browser.Copy(code.UserCode) == nil {
		info(out, mutedStyle.Render("(code copied to the clipboard)"))
	}
	if open {
		if err := a.Open(code.VerificationURI); err != nil {
			warn(out, "Could not open the browser: %v", err)
		}
	}
	info(out, "Waiting for GitHub authorization...")

	for {
		select {
		case <-ctx.Done():
			a.Auth.Cancel()
			return ctx.Err()
		case ev := <-events:
			switch ev.Kind {
			case auth.EventLoggedIn:
				if ev.User != nil {
					success(out, "Connected as @%s", ev.User.Login)
				}
				return nil
			case auth.EventTimeout:
				return errors.New("login timed out")
			case auth.EventCancelled:
				return errors.New("login cancelled")
			case auth.EventFailed:
				return fmt.Errorf("login failed: %s", common.ExtractErrorMessage(ev.Err))
			}
		}
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the GitHub token and hardware session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.Auth.Logout()
			success(cmd.OutOrStdout(), "Disconnected from Ci5")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the GitHub account and hardware verification",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			a.Startup(cmd.Context())
			out := cmd.OutOrStdout()
			if !a.Auth.LoggedIn() {
				info(out, "GitHub:   %s", mutedStyle.Render("not connected"))
			} else {
				info(out, "GitHub:   @%s", a.Login())
			}
			if a.Verify.IsVerified() {
				info(out, "Hardware: %s", successStyle.Render("verified ("+submission.ShortHWID(a.Verify.HardwareID())+")"))
			} else {
				info(out, "Hardware: %s", mutedStyle.Render("unverified"))
			}
			info(out, "Session:  %s", a.Store.SessionID())
			return nil
		},
	}
}

func (c *cli) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Prove you run ci5 on real hardware",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			a.Startup(ctx)
			out := cmd.OutOrStdout()
			if !a.Auth.LoggedIn() {
				return errNotLoggedIn
			}
			if a.Verify.IsVerified() {
				success(out, "Hardware already verified")
				return nil
			}

			w := watchVerification(a)
			if _, err := a.Verify.RequestVerification(ctx); err != nil {
				return fmt.Errorf("verify: %s", common.ExtractErrorMessage(err))
			}
			return w.wait(ctx, out, nil)
		},
	}
}

// verifyWatch relays verification events to a CLI command.
type verifyWatch struct {
	a      *app.App
	events chan verify.Event
}

// watchVerification subscribes before a challenge is requested so the
// issued command is never missed.
func watchVerification(a *app.App) *verifyWatch {
	w := &verifyWatch{a: a, events: make(chan verify.Event, 8)}
	a.Verify.Subscribe(func(ev verify.Event) {
		select {
		case w.events <- ev:
		default:
		}
	})
	return w
}

// wait prints the challenge command and blocks until the device answers.
// With results set it keeps waiting for the gated action to report.
func (w *verifyWatch) wait(ctx context.Context, out io.Writer, results <-chan app.IssueResult) error {
	for {
		select {
		case <-ctx.Done():
			w.a.Verify.Cancel()
			return ctx.Err()
		case res := <-results:
			return reportIssue(out, res)
		case ev := <-w.events:
			switch ev.Kind {
			case verify.EventChallengeIssued:
				fmt.Fprintf(out, "Run this on your Ci5 device:\n\n    %s\n\n", codeStyle.Render(ev.Command))
				info(out, "Waiting for device...")
			case verify.EventVerified:
				success(out, "Hardware verified")
				if results == nil {
					return nil
				}
			case verify.EventTimeout:
				return errors.New("verification timed out")
			case verify.EventCancelled:
				return errors.New("verification cancelled")
			case verify.EventFailed:
				return fmt.Errorf("verification failed: %s", common.ExtractErrorMessage(ev.Err))
			}
		}
	}
}
