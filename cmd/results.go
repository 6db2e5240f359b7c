package cmd

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/assessment"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Finish the assessment and show recommendations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		snap := a.session.Snapshot(ctx)
		if snap.State == assessment.StateInProgress {
			if open := len(snap.Questions) - len(snap.Answers); open > 0 {
				hint(cmd.ErrOrStderr(), "Submitting with %d unanswered question(s).", open)
			}
		}
		return submitAndShow(cmd, a, cmd.OutOrStdout())
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the recommendations of the last submitted assessment",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.session.Result(cmd.Context())
		if errors.Is(err, assessment.ErrNotCompleted) {
			return fmt.Errorf("%w\n\nRun 'clario submit' first", err)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return fmt.Errorf("encode results: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		renderResult(out, res)
		return nil
	},
}

func init() {
	resultsCmd.Flags().Bool("json", false, "Print results as JSON")
}
