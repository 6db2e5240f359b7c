package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard answers and results so the assessment can be retaken",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if all {
			a.session.Reset(ctx)
			a.kv.ClearAll(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "All Clario data cleared.")
			return nil
		}
		a.session.Reset(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), "Assessment reset. Your name and stream are kept.")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("all", false, "Also forget your name and stream")
}
