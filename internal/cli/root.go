package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Memory health and curation for AI coding agents",
	Long:  "Curator keeps agent memory files (CLAUDE.md, rules, skills) healthy: it scores them, suggests curation edits, and manages extracted learnings. Single Go binary.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(curateCmd)
	rootCmd.AddCommand(learningsCmd)
}
