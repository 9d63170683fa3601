package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiractx/internal/issuekey"
)

// extractCmd prints the issue key found in each branch name, without contacting JIRA.
var extractCmd = &cobra.Command{
	Use:   "extract BRANCH...",
	Short: "Print the JIRA issue key contained in branch names",
	Long: `Print the issue key found in each branch name, one per line.
Branches without a key print "-".

Example:
  jiractx extract feature/PROJ-77-login main`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, branch := range args {
			key, ok := issuekey.Extract(branch)
			if !ok {
				fmt.Fprintln(out, "-")
				continue
			}
			fmt.Fprintln(out, key)
		}
		return nil
	},
}
