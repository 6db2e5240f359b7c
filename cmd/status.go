package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/assessment"
	"github.com/clario-app/clario/internal/ui/theme"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show assessment progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		snap := a.session.Snapshot(ctx)
		out := cmd.OutOrStdout()

		name := snap.UserName
		if name == "" {
			name = "-"
		}
		stream := string(snap.Stream)
		if stream == "" {
			stream = "-"
		}
		fmt.Fprintf(out, "%-9s %s\n", "Name:", name)
		fmt.Fprintf(out, "%-9s %s\n", "Stream:", stream)
		fmt.Fprintf(out, "%-9s %s\n", "State:", snap.State)

		switch snap.State {
		case assessment.StateNotStarted:
			hint(out, "Run 'clario start --stream <stream>' or 'clario play' to begin.")
		case assessment.StateInProgress:
			total := len(snap.Questions)
			fmt.Fprintf(out, "%-9s %s %d/%d answered\n", "Progress:",
				theme.ProgressBar(len(snap.Answers), total, progressWidth), len(snap.Answers), total)
			fmt.Fprintf(out, "%-9s %d\n", "Current:", snap.CurrentIndex+1)
			fmt.Fprintf(out, "%-9s %s\n", "Session:", snap.SessionID)
		case assessment.StateCompleted:
			res, err := a.session.Result(ctx)
			if err != nil {
				return err
			}
			if !res.CompletedAt.IsZero() {
				fmt.Fprintf(out, "%-9s %s\n", "Finished:", res.CompletedAt.Local().Format(time.DateTime))
			}
			if res.Primary != nil {
				fmt.Fprintf(out, "%-9s %s (%d%%)\n", "Top:", res.Primary.Course.Name, res.Primary.MatchPercentage)
			}
		}
		return nil
	},
}
