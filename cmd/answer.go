package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/assessment"
)

var answerCmd = &cobra.Command{
	Use:   "answer [question-id] <option>",
	Short: "Answer the current question, or a specific one by ID",
	Long: `Answer a question with an option label (A, B, ...) or option ID.

With one argument the current question is answered and the cursor moves on.
With two arguments the named question is answered and the cursor stays put.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if len(args) == 2 {
			if err := a.session.Answer(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved answer %s for %s.\n", args[1], args[0])
			return nil
		}

		q, i, err := a.session.Current(ctx)
		if err != nil {
			return err
		}
		if err := a.session.Answer(ctx, q.ID, args[0]); err != nil {
			return err
		}
		return showNext(cmd, a, i)
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <number>",
	Short: "Move to a question by its number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid question number %q", args[0])
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		q, i, err := a.session.Goto(ctx, n-1)
		if err != nil {
			return err
		}
		snap := a.session.Snapshot(ctx)
		renderQuestion(cmd.OutOrStdout(), q, i, len(snap.Questions), selectedOption(snap, q.ID))
		return nil
	},
}

// showNext advances past question prev and prints what comes next.
func showNext(cmd *cobra.Command, a *app, prev int) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	snap := a.session.Snapshot(ctx)
	if next := firstUnanswered(snap); next < 0 {
		fmt.Fprintln(out, "All questions answered.")
		hint(out, "Run 'clario submit' to see your recommendations.")
		return nil
	}

	q, i, err := a.session.Next(ctx)
	if err != nil {
		return err
	}
	if i == prev {
		// Last question answered but earlier ones are still open.
		q, i, err = a.session.Goto(ctx, firstUnanswered(snap))
		if err != nil {
			return err
		}
	}
	renderQuestion(out, q, i, len(snap.Questions), selectedOption(snap, q.ID))
	return nil
}

// selectedOption returns the option ID chosen for questionID, or "".
func selectedOption(snap assessment.Snapshot, questionID string) string {
	if ans, ok := snap.Answered(questionID); ok {
		return ans.SelectedOption.ID
	}
	return ""
}

// firstUnanswered returns the index of the first open question, or -1.
func firstUnanswered(snap assessment.Snapshot) int {
	for i, q := range snap.Questions {
		if _, ok := snap.Answered(q.ID); !ok {
			return i
		}
	}
	return -1
}
