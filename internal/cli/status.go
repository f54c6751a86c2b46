package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/spotter/internal/app"
)

func newStatusCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show the active workout, rest timer and sync queue",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(a *app.App) error {
				writeStatus(cmd.OutOrStdout(), a)
				return nil
			})
		},
	}
}

func writeStatus(out io.Writer, a *app.App) {
	sess := a.Session.Snapshot()
	if sess.Active() {
		name := "workout"
		if draft, ok := a.Session.Draft(); ok && draft.Name != "" {
			name = draft.Name
		}
		printOK(out, "%s in progress (%s), elapsed %s", name, sess.ActiveWorkoutID, formatElapsed(sess.ElapsedSeconds))
		if draft, ok := a.Session.Draft(); ok {
			done, total := draft.SetCounts()
			fmt.Fprintf(out, "  sets: %d/%d\n", done, total)
		}
	} else {
		fmt.Fprintln(out, "No active workout")
	}

	timer := a.Timer.Snapshot()
	if timer.Active() {
		fmt.Fprintf(out, "  rest: %s left of %s\n", formatElapsed(timer.TimeLeft), formatElapsed(timer.TotalSeconds))
	}

	switch n := a.Queue.Len(); n {
	case 0:
		printOK(out, "sync queue empty")
	default:
		printWarn(out, "%d workout(s) waiting to sync", n)
		printHint(out, "run `spotter sync` once the API is reachable")
	}
}

func formatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
