package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/spotter/internal/config"
	"github.com/five82/spotter/internal/logtail"
)

func newLogsCmd(g *globalOptions) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:     "logs",
		Aliases: []string{"l"},
		Short:   "Print recent log entries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			raw, err := logtail.Read(cfg.LogPath(), lines)
			if err != nil {
				return err
			}
			if len(raw) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No log entries yet")
				return nil
			}
			for _, line := range logtail.Format(raw) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	return cmd
}
