package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/dreamswag/ci5dev/internal/app"
)

func (c *cli) sourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage external corks.json sources",
	}
	cmd.AddCommand(
		c.sourcesListCmd(),
		c.sourcesAddCmd(),
		c.sourcesRemoveCmd(),
		c.sourcesEnableCmd(true),
		c.sourcesEnableCmd(false),
	)
	return cmd
}

func (c *cli) sourcesListCmd() *cobra.Command {
	var fetch bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			sources := a.Sources.List()
			if len(sources) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("No sources. Add one with: ci5dev sources add <url>"))
				return nil
			}
			if fetch {
				_, _ = a.Reload(cmd.Context())
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("ID", "NAME", "URL", "ENABLED", "STATUS")
			for _, src := range sources {
				enabled := "no"
				if src.Enabled {
					enabled = "yes"
				}
				t.Row(src.ID[:min(8, len(src.ID))], a.Sources.Label(src), src.URL, enabled, sourceStatus(a, src.ID, fetch))
			}
			fmt.Fprintln(out, t.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&fetch, "fetch", false, "fetch every enabled source and show its status")
	return cmd
}

func sourceStatus(a *app.App, id string, fetched bool) string {
	if !fetched {
		return "-"
	}
	res, ok := a.Sources.Result(id)
	switch {
	case !ok:
		return "not fetched"
	case res.Err != nil:
		return "unavailable"
	default:
		return fmt.Sprintf("%d corks", res.Entries.Len())
	}
}

func (c *cli) sourcesAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Register a corks.json source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			src, err := a.Sources.Add(args[0], name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			success(out, "Added %s (%s)", src.URL, src.ID)
			warn(out, "Third-party corks are not signed or audited by ci5")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name for the source")
	return cmd
}

func (c *cli) sourcesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id|url>",
		Short: "Forget a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			src, err := a.Sources.Find(args[0])
			if err != nil {
				return err
			}
			if err := a.Sources.Remove(src.ID); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Removed %s", src.URL)
			return nil
		},
	}
}

func (c *cli) sourcesEnableCmd(enable bool) *cobra.Command {
	use, short, verb := "enable <id|url>", "Include a source in the registry", "Enabled"
	if !enable {
		use, short, verb = "disable <id|url>", "Keep a source but skip it when loading", "Disabled"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			src, err := a.Sources.Find(args[0])
			if err != nil {
				return err
			}
			if err := a.Sources.SetEnabled(src.ID, enable); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s %s", verb, src.URL)
			return nil
		},
	}
}
