package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/spotter/internal/app"
)

func newSyncCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Aliases: []string{"y"},
		Short:   "Replay queued workouts against the API",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(a *app.App) error {
				summary := a.Syncer.Drain(cmd.Context())
				out := cmd.OutOrStdout()
				if summary.Failed() > 0 {
					printWarn(out, "%s", summary.Message())
					return fmt.Errorf("%d of %d queued workouts failed to sync", summary.Failed(), summary.Attempted)
				}
				printOK(out, "%s", summary.Message())
				return nil
			})
		},
	}
}
