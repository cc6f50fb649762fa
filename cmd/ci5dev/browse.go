package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dreamswag/ci5dev/internal/app"
	"github.com/dreamswag/ci5dev/internal/logger"
	"github.com/dreamswag/ci5dev/internal/metrics"
	"github.com/dreamswag/ci5dev/internal/ui"
)

var errNoTerminal = errors.New("browse needs an interactive terminal; try `ci5dev search` or `ci5dev show`")

func (c *cli) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the full-screen registry browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.browse(cmd)
		},
	}
}

func (c *cli) browse(cmd *cobra.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	m := metrics.New()
	a, err := c.app(cmd, app.WithMetrics(m))
	if err != nil {
		return err
	}
	defer a.Close()
	defer logger.Close()

	ctx := cmd.Context()
	if addr := a.Config.MetricsAddr; addr != "" {
		go func() {
			if err := m.Serve(ctx, addr); err != nil {
				logger.LogError("METRICS", addr, err)
			}
		}()
	}

	logger.Log("Starting browser %s (%s)", version, commit)
	return ui.Run(ctx, a)
}
