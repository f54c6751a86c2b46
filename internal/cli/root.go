package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/spotter/internal/app"
)

type globalOptions struct {
	configPath string
	prefsPath  string
	debug      bool
}

func (g *globalOptions) appOptions() app.Options {
	return app.Options{ConfigPath: g.configPath, PrefsPath: g.prefsPath, Debug: g.debug}
}

// NewRootCommand builds the spotter command tree. Running it without a
// subcommand starts the workout TUI.
func NewRootCommand() (*cobra.Command, error) {
	g := &globalOptions{}

	run := newRunCmd(g)
	rootCmd := &cobra.Command{
		Use:   "spotter",
		Short: "Terminal workout logger with rest timer and offline sync",
		Long:  "Spotter tracks an active workout, counts rest between sets and queues finished workouts while the API is unreachable.",
		Args:  cobra.NoArgs,
		RunE:  run.RunE,
	}
	rootCmd.Flags().AddFlagSet(run.Flags())

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file path (default ~/.config/spotter/config.toml)")
	rootCmd.PersistentFlags().StringVar(&g.prefsPath, "prefs", "", "preferences file path (default ~/.config/spotter/prefs.toml)")
	rootCmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(
		run,
		newStatusCmd(g),
		newSyncCmd(g),
		newQueueCmd(g),
		newDiscardCmd(g),
		newLogoutCmd(g),
		newLogsCmd(g),
	)

	return rootCmd, nil
}

// withApp opens the engine for a one-shot command and closes it afterwards.
// Notifications raised while opening, such as a rest countdown that ran out
// while spotter was closed, are printed before the command runs.
func withApp(cmd *cobra.Command, g *globalOptions, fn func(a *app.App) error) error {
	a, err := app.Open(g.appOptions())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	for _, n := range a.Inbox.Drain() {
		printNotice(cmd.OutOrStdout(), "%s: %s", n.Title, n.Body)
	}
	return fn(a)
}
