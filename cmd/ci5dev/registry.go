package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dreamswag/ci5dev/internal/app"
	"github.com/dreamswag/ci5dev/internal/registry"
	"github.com/dreamswag/ci5dev/internal/render"
	"github.com/dreamswag/ci5dev/internal/telemetry"
)

func (c *cli) searchCmd() *cobra.Command {
	var view string

	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "List corks matching a query, or one view with --view",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, r, err := c.loadRegistry(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			var listing render.Listing
			switch {
			case len(args) > 0:
				listing = r.Search(strings.Join(args, " "))
			case view != "":
				if src, err := a.Sources.Find(view); err == nil {
					view = src.ID
				}
				listing = r.Render(view)
			default:
				listing = r.Render(render.ViewOfficial)
			}
			printListing(cmd.OutOrStdout(), listing)
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "", "official, community, top, or a source id or URL")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <key>",
		Short: "Show one cork",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, r, err := c.loadRegistry(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			d, ok := r.RenderDetail(args[0])
			if !ok {
				return fmt.Errorf("no cork named %q", args[0])
			}
			printDetail(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func (c *cli) signalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signals <key>",
		Short: "Show community RAM and stability reports for a cork",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			s := a.Signals(cmd.Context(), args[0])
			out := cmd.OutOrStdout()
			value, caption := telemetry.Headline(s)
			fmt.Fprintf(out, "%s  %s\n", codeStyle.Render(value), mutedStyle.Render(caption))
			for _, sig := range s.Signals {
				info(out, "%s  @%s  %d MB  %s", sig.CreatedAt.Format("2006-01-02"), sig.Author, sig.RAMMB, sig.Status)
			}
			return nil
		},
	}
}

// loadRegistry fetches the manifest and every enabled source. An
// unreachable manifest is reported but not fatal; sources may still list.
func (c *cli) loadRegistry(cmd *cobra.Command) (*app.App, *render.Renderer, error) {
	a, err := c.app(cmd)
	if err != nil {
		return nil, nil, err
	}

	out := cmd.ErrOrStderr()
	reg, err := a.Reload(cmd.Context())
	switch {
	case errors.Is(err, registry.ErrOffline):
		warn(out, "Registry unreachable: %s", render.OfflineMode)
	case err != nil:
		a.Close()
		return nil, nil, err
	}
	if failed := a.Sources.Failed(); failed > 0 {
		warn(out, "%d source(s) unavailable", failed)
	}
	return a, render.NewRenderer(reg, a.Config.GitHubWebURL), nil
}

func printListing(w io.Writer, l render.Listing) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(l.Header))
	if len(l.Rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render(l.Empty))
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("", "CORK", "RAM", "AUDIT", "LABEL", "BY")
	for _, row := range l.Rows {
		t.Row(row.Icon, row.Key, row.RAM, row.Dot, row.Label, row.Submitter)
	}
	fmt.Fprintln(w, t.Render())
}

func printDetail(w io.Writer, d render.Detail) {
	tag := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Tag.Color)).Bold(true)
	fmt.Fprintf(w, "%s %s  %s\n", d.Icon, lipgloss.NewStyle().Bold(true).Render(d.Title), tag.Render(d.Tag.Text))
	if d.Description != "" {
		info(w, "%s", d.Description)
	}
	info(w, "RAM:       %s", d.RAM)
	info(w, "Submitter: %s", d.Submitter)
	if d.SourceURL != "" {
		info(w, "Source:    %s", d.SourceURL)
	}
	info(w, "Install:   %s", codeStyle.Render(d.InstallCommand))
}
