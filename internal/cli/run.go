package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/spotter/internal/app"
)

func newRunCmd(g *globalOptions) *cobra.Command {
	var templatePath string

	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"r"},
		Short:   "Open the workout TUI",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), g.appOptions(), templatePath)
		},
	}
	cmd.Flags().StringVarP(&templatePath, "template", "t", "", "routine TOML to start from")
	return cmd
}
