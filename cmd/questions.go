package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/assessment"
	"github.com/clario-app/clario/internal/catalog"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the questions of the current (or given) stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		streamVal, _ := cmd.Flags().GetString("stream")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		snap := a.session.Snapshot(ctx)

		stream := snap.Stream
		if streamVal != "" {
			s, ok := catalog.ParseStream(streamVal)
			if !ok {
				return fmt.Errorf("unknown stream %q: choose one of %s", streamVal, streamNames())
			}
			stream = s
		}
		if stream == "" {
			return fmt.Errorf("no stream selected: pass --stream or run 'clario start'")
		}

		questions := a.svc.QuestionsByStream(stream)
		active := snap.State == assessment.StateInProgress && stream == snap.Stream

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-3s  %-4s  %-12s  %-24s  %s\n", "", "#", "ID", "Category", "Question")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for i, q := range questions {
			mark := " "
			if active && i == snap.CurrentIndex {
				mark = "›"
			}
			answer := ""
			if stream == snap.Stream {
				if ans, ok := snap.Answered(q.ID); ok {
					answer = "✓ " + ans.SelectedOption.Label
				}
			}
			text := q.Text
			if len(text) > 48 {
				text = text[:45] + "..."
			}
			fmt.Fprintf(out, "%-3s  %-4d  %-12s  %-24s  %-48s  %s\n", mark, i+1, q.ID, q.Category, text, answer)
		}
		fmt.Fprintf(out, "\n%d questions\n", len(questions))
		return nil
	},
}

func init() {
	questionsCmd.Flags().String("stream", "", "Stream to list instead of the active one")
}
