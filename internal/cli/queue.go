package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/spotter/internal/app"
)

func newQueueCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "queue",
		Aliases: []string{"q"},
		Short:   "Inspect the offline mutation queue",
	}
	cmd.AddCommand(newQueueListCmd(g), newQueueClearCmd(g))
	return cmd
}

func newQueueListCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List queued mutations oldest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(a *app.App) error {
				out := cmd.OutOrStdout()
				items := a.Queue.List()
				if len(items) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				for _, m := range items {
					fmt.Fprintf(out, "%s  %-16s  %s  retries=%d\n",
						m.ID, m.Type, m.CreatedAt.Local().Format(time.DateTime), m.RetryCount)
				}
				return nil
			})
		},
	}
}

func newQueueClearCmd(g *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every queued mutation without syncing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(a *app.App) error {
				out := cmd.OutOrStdout()
				n := a.Queue.Len()
				if n > 0 && !force {
					printWarn(out, "%d queued workout(s) would be lost", n)
					printHint(out, "re-run with --force to clear anyway")
					return fmt.Errorf("queue not cleared")
				}
				if err := a.Queue.Clear(); err != nil {
					return err
				}
				printOK(out, "cleared %d queued mutation(s)", n)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "clear even when workouts are waiting to sync")
	return cmd
}
