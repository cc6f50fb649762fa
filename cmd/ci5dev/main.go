package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dreamswag/ci5dev/internal/app"
	"github.com/dreamswag/ci5dev/internal/config"
	"github.com/dreamswag/ci5dev/internal/logger"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), err)
		stop()
		os.Exit(1)
	}
}

// cli carries the global flags to every subcommand.
type cli struct {
	flags *config.Flags
	opts  []app.Option
}

func newRootCmd(opts ...app.Option) *cobra.Command {
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:   "ci5dev",
		Short: "Browse, vote on and submit ci5 corks",
		Long: `ci5dev browses the ci5 cork registry from the terminal.

Official and community corks come from the signed manifest; extra
corks.json sources can be added with "ci5dev sources add". Voting and
submitting need a GitHub login and a hardware-verified ci5 device.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.browse(cmd)
		},
	}
	c.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		c.browseCmd(),
		c.searchCmd(),
		c.showCmd(),
		c.signalsCmd(),
		c.sourcesCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.verifyCmd(),
		c.submitCmd(),
		c.voteCmd(),
		mockAPICmd(),
		versionCmd(),
	)
	return root
}

// config resolves the configuration and opens the log file under the
// data directory.
func (c *cli) config() (*config.Config, error) {
	cfg, err := c.flags.Load()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := logger.Init(cfg.LogPath()); err != nil {
		logger.EnsureInit()
	}
	return cfg, nil
}

func (c *cli) app(cmd *cobra.Command, extra ...app.Option) (*app.App, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg, append(append([]app.Option{}, c.opts...), extra...)...)
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#30D158")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9F0A")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF453A")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9FAFB")).Bold(true)
)

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warnStyle.Render("⚠"), fmt.Sprintf(format, args...))
}
