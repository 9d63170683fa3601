package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiractx/internal/config"
	"github.com/danielolaszy/jiractx/internal/jira"
)

// issuesCmd lists recently updated issues of a project.
var issuesCmd = &cobra.Command{
	Use:   "issues PROJECT",
	Short: "List the most recently updated issues of a JIRA project",
	Long: `List issues of a project, most recently updated first, as JSON.

Example:
  jiractx issues PROJ --max 20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("max")
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		client, err := jira.NewClient(cfg.Jira)
		if err != nil {
			return fmt.Errorf("failed to initialize jira client: %w", err)
		}

		issues, err := client.ProjectIssues(cmd.Context(), strings.TrimSpace(args[0]), limit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(issues)
	},
}

func init() {
	issuesCmd.Flags().Int("max", jira.DefaultProjectIssues, "Maximum number of issues to list")
}
