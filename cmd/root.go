package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clario",
	Short: "Career guidance for secondary school leavers",
	Long: `Clario asks a short stream-specific questionnaire and recommends
university courses that match your interests, with reasons for each match.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file (overrides CLARIO_CONFIG env var)")
	pf.String("db", "", "Path to SQLite database file (overrides CLARIO_DB env var)")
	pf.String("storage", "", "Storage backend: sqlite, badger or memory")
	pf.Bool("ephemeral", false, "Keep session state in memory only")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(gotoCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}
