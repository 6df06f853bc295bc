package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mockprep",
	Short: "Mock interview practice in the terminal",
	Long: "mockprep runs timed mock interviews: it picks questions for your role and level, " +
		"scores each answer on five dimensions and ends with a feedback report.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPractice(cmd)
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides MOCKPREP_DB and the config file)")
	pf.String("config", "", "Config file (default ./mockprep.yaml when present)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.Bool("json", false, "JSON output for logs and listings")

	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
