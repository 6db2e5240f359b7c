package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/assessment"
	"github.com/clario-app/clario/internal/catalog"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Begin an assessment for a stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		streamVal, _ := cmd.Flags().GetString("stream")

		stream, ok := catalog.ParseStream(streamVal)
		if !ok {
			return fmt.Errorf("unknown stream %q: choose one of %s", streamVal, streamNames())
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if name != "" {
			if err := a.session.SetUserName(ctx, name); err != nil {
				return err
			}
		} else if a.session.UserName(ctx) == "" {
			return fmt.Errorf("--name is required for your first assessment")
		}

		if err := a.session.Start(ctx, stream); err != nil {
			if errors.Is(err, assessment.ErrAlreadyStarted) {
				return fmt.Errorf("%w\n\nRun 'clario reset' to switch streams", err)
			}
			return err
		}

		q, i, err := a.session.Current(ctx)
		if err != nil {
			return err
		}
		total := len(a.svc.QuestionsByStream(stream))

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Welcome, %s! Your %s assessment has %d questions.\n\n", a.session.UserName(ctx), stream, total)
		renderQuestion(out, q, i, total, selectedOption(a.session.Snapshot(ctx), q.ID))
		hint(out, "Answer with 'clario answer <option>' or run 'clario play'.")
		return nil
	},
}

func init() {
	startCmd.Flags().String("name", "", "Your name (remembered between sessions)")
	startCmd.Flags().String("stream", "", "Stream: Science, Arts or Commercial (required)")
	_ = startCmd.MarkFlagRequired("stream")
}
