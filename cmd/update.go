package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/selfupdate"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update clario to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		checkOnly, _ := cmd.Flags().GetBool("check")
		target, _ := cmd.Flags().GetString("version")
		out := cmd.OutOrStdout()

		checker := selfupdate.NewChecker(selfupdate.WithTimeout(2 * time.Minute))
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		if checkOnly {
			res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
			if err != nil {
				return fmt.Errorf("check for updates: %w", err)
			}
			if !res.UpdateAvailable {
				fmt.Fprintf(out, "clario %s is the latest version.\n", version)
				return nil
			}
			fmt.Fprintf(out, "clario %s is available (you have %s).\n%s\n", res.LatestVersion, version, res.ReleaseURL)
			return nil
		}

		err := checker.Update(ctx, &selfupdate.UpdateInput{
			CurrentVersion: version,
			TargetVersion:  target,
		}, func(p selfupdate.UpdateProgress) {
			fmt.Fprintln(out, p.Message)
		})

		if err == nil {
			return nil
		}
		if errors.Is(err, selfupdate.ErrDevBuild) {
			fmt.Fprintln(out, "Cannot update a development build. Install a release build first.")
			return nil
		}
		if errors.Is(err, selfupdate.ErrAlreadyLatest) {
			fmt.Fprintln(out, "Already running the latest version.")
			return nil
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w\n\nTry running: sudo clario update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only report whether a newer release exists")
	updateCmd.Flags().String("version", "", "Install this release tag instead of the latest")
}
