// Package cli defines aperture's command line.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/aperture/internal/app"
)

const defaultTimeout = 10 * time.Second

// globalFlags are shared by every command.
type globalFlags struct {
	configPath  string
	prefsPath   string
	device      string
	poll        time.Duration
	debounce    time.Duration
	metricsAddr string
	timeout     time.Duration
	verbose     bool
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath:     g.configPath,
		PrefsPath:      g.prefsPath,
		Device:         g.device,
		PollInterval:   g.poll,
		UpdateDebounce: g.debounce,
		MetricsAddr:    g.metricsAddr,
	}
}

// oneShot returns options for a non-interactive command. Logs go to stderr
// with --verbose and are dropped otherwise.
func (g *globalFlags) oneShot(cmd *cobra.Command) app.Options {
	opts := g.options()
	opts.LogWriter = io.Discard
	if g.verbose {
		opts.LogWriter = cmd.ErrOrStderr()
	}
	return opts
}

func (g *globalFlags) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// NewRootCmd builds the aperture command tree. Without a subcommand it runs
// the TUI.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "aperture",
		Short: "Terminal control panel for a networked camera",
		Long: `aperture polls a camera's settings API, lets you change exposure,
white balance and capture settings with immediate feedback, and writes
edits back once you stop adjusting.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), g.options())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "Path to config.toml (default ~/.config/aperture/config.toml)")
	flags.StringVar(&g.prefsPath, "prefs", "", "Path to prefs.toml (default ~/.config/aperture/prefs.toml)")
	flags.StringVar(&g.device, "device", "", "Camera API address, overrides api_bind")
	flags.DurationVar(&g.poll, "poll", 0, "Poll interval, overrides poll_interval_ms")
	flags.DurationVar(&g.debounce, "debounce", 0, "Quiet period before an edit is written, overrides update_debounce_ms")
	flags.StringVar(&g.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flags.DurationVar(&g.timeout, "timeout", defaultTimeout, "Deadline for one-shot commands")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "Log to stderr in one-shot commands")

	root.AddCommand(newGetCmd(g))
	root.AddCommand(newSetCmd(g))
	root.AddCommand(newFilesCmd(g))

	return root
}
