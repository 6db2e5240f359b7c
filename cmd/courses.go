package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/catalog"
	"github.com/clario-app/clario/internal/ui/theme"
)

var coursesCmd = &cobra.Command{
	Use:   "courses [stream]",
	Short: "Browse the course catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		streams := cat.Streams()
		if len(args) == 1 {
			s, ok := catalog.ParseStream(args[0])
			if !ok {
				return fmt.Errorf("unknown stream %q: choose one of %s", args[0], streamNames())
			}
			streams = []catalog.Stream{s}
		}

		out := cmd.OutOrStdout()
		var n int
		for _, s := range streams {
			fmt.Fprintln(out, theme.Label.Render(string(s)))
			fmt.Fprintln(out, theme.Subtitle.Render(catalog.StreamDescription(s)))
			fmt.Fprintln(out)
			for _, c := range cat.CoursesByStream(s) {
				renderCourse(out, c)
				fmt.Fprintln(out)
				n++
			}
		}
		fmt.Fprintf(out, "%d courses\n", n)
		return nil
	},
}
