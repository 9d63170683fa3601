// Package cmd provides the command-line interface for jiractx.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jiractx",
	Short: "jiractx attaches JIRA issue context to editor requests",
	Long: `jiractx derives a JIRA issue key from the current source-control branch
and returns a cached summary of that issue as context for editors and IDEs.

Configuration is read from the environment:
  JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN   JIRA server and credentials (required)
  GITHUB_TOKEN, GITHUB_DOMAIN            pull request branch lookup (optional)
  PORT, CACHE_SIZE                       server port and cache capacity
  CACHE_TTL                              cache window, seconds or a duration (default 5m)
  LOG_LEVEL, LOG_FORMAT                  logging`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(issuesCmd)
}
