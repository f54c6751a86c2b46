package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/spotter/internal/app"
)

func newDiscardCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "discard",
		Short: "Abandon the active workout and its rest timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(a *app.App) error {
				out := cmd.OutOrStdout()
				if !a.Session.Active() {
					printOK(out, "no active workout")
					return nil
				}
				a.Workout.Discard()
				printOK(out, "workout discarded")
				return nil
			})
		},
	}
}

func newLogoutCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session, rest timer and offline queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(a *app.App) error {
				if err := a.Workout.Logout(); err != nil {
					return err
				}
				printOK(cmd.OutOrStdout(), "local workout state cleared")
				return nil
			})
		},
	}
}
