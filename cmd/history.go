package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent assessment session events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		session, _ := cmd.Flags().GetString("session")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if a.events == nil {
			fmt.Fprintln(out, "Event history is not kept with the memory backend.")
			return nil
		}

		events, err := a.events.QuerySessionEvents(cmd.Context(), store.QueryOpts{Limit: limit, SessionID: session})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Fprintln(out, "No session events found.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-5s  %-19s  %-8s  %-8s  %-10s  %-12s  %s\n",
			"Seq", "Timestamp", "Session", "Action", "Stream", "Question", "Answers")
		fmt.Fprintln(out, strings.Repeat("─", 85))

		for _, e := range events {
			id := e.SessionID
			if len(id) > 8 {
				id = id[:8]
			}
			fmt.Fprintf(out, "%-5d  %-19s  %-8s  %-8s  %-10s  %-12s  %d\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				id,
				e.Action,
				e.Stream,
				e.QuestionID,
				e.Answers,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of events to show")
	historyCmd.Flags().String("session", "", "Only show events of this session ID")
}
