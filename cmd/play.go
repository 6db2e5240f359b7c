package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/assessment"
	"github.com/clario-app/clario/internal/catalog"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Walk through the assessment one question at a time",
	Long: `Walk through the assessment interactively.

At each question type an option label (A, B, ...) to answer, n or p to move
forward or back, s to submit early, or q to stop. Progress is saved after
every answer, so 'clario play' picks up where you left off.`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().String("name", "", "Your name (asked for if not known)")
	playCmd.Flags().String("stream", "", "Stream to start (asked for if no assessment is running)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	prompt := func(label string) (string, bool) {
		fmt.Fprint(out, label)
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	switch a.session.State(ctx) {
	case assessment.StateCompleted:
		res, err := a.session.Result(ctx)
		if err != nil {
			return err
		}
		renderResult(out, res)
		hint(out, "Run 'clario reset' to take the assessment again.")
		return nil

	case assessment.StateNotStarted:
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = a.session.UserName(ctx)
		}
		for name == "" || a.session.SetUserName(ctx, name) != nil {
			var ok bool
			if name, ok = prompt("Your name: "); !ok {
				return nil
			}
		}

		streamVal, _ := cmd.Flags().GetString("stream")
		stream, ok := catalog.ParseStream(streamVal)
		for !ok {
			fmt.Fprintln(out)
			for _, s := range catalog.AllStreams() {
				fmt.Fprintf(out, "  %-11s %s\n", s, catalog.StreamDescription(s))
			}
			if streamVal, ok = prompt("Choose a stream: "); !ok {
				return nil
			}
			stream, ok = catalog.ParseStream(streamVal)
		}
		if err := a.session.Start(ctx, stream); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nHi %s, let's find your %s match.\n\n", a.session.UserName(ctx), stream)
	}

	for {
		q, i, err := a.session.Current(ctx)
		if err != nil {
			return err
		}
		snap := a.session.Snapshot(ctx)
		total := len(snap.Questions)
		renderQuestion(out, q, i, total, selectedOption(snap, q.ID))

		input, ok := prompt("Answer (or n, p, s, q): ")
		if !ok {
			return nil
		}

		switch strings.ToLower(input) {
		case "q", "quit":
			hint(out, "Progress saved. Run 'clario play' to continue.")
			return nil
		case "p", "prev", "back":
			if _, _, err := a.session.Previous(ctx); err != nil {
				return err
			}
			continue
		case "", "n", "next":
			if i == total-1 {
				hint(out, "This is the last question. Answer it or type s to submit.")
			}
			if _, _, err := a.session.Next(ctx); err != nil {
				return err
			}
			continue
		case "s", "submit":
			return submitAndShow(cmd, a, out)
		}

		if err := a.session.Answer(ctx, q.ID, input); err != nil {
			if errors.Is(err, assessment.ErrUnknownOption) {
				fmt.Fprintf(out, "%q is not one of the options.\n\n", input)
				continue
			}
			return err
		}

		next := firstUnanswered(a.session.Snapshot(ctx))
		switch {
		case next < 0:
			return submitAndShow(cmd, a, out)
		case i == total-1:
			_, _, err = a.session.Goto(ctx, next)
		default:
			_, _, err = a.session.Next(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
}

func submitAndShow(cmd *cobra.Command, a *app, out io.Writer) error {
	ctx := cmd.Context()
	if _, err := a.session.Submit(ctx); err != nil {
		return err
	}
	res, err := a.session.Result(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	renderResult(out, res)
	return nil
}
