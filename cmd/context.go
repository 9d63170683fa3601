package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiractx/internal/config"
	"github.com/danielolaszy/jiractx/pkg/models"
)

// contextCmd assembles context once and prints it as JSON.
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print JIRA context for a branch or pull request",
	Long: `Assemble context for a single branch and print the items as JSON.

Either pass the branch directly or name a pull request to look up its head
branch on GitHub (requires GITHUB_TOKEN).

Examples:
  jiractx context --branch feature/PROJ-77-login
  jiractx context --repository owner/repo --pr 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := contextRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		a, err := newAssembler(cfg)
		if err != nil {
			return err
		}

		items := a.AssembleRequest(cmd.Context(), req)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(models.ContextResponse{Context: items})
	},
}

func init() {
	addContextFlags(contextCmd)
}

func addContextFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("branch", "b", "", "Branch name to extract the issue key from")
	cmd.Flags().StringP("repository", "r", "", "GitHub repository (e.g., 'owner/repo')")
	cmd.Flags().Int("pr", 0, "Pull request number whose head branch is used")
}

// contextRequestFromFlags validates the flag combination and builds a request.
func contextRequestFromFlags(cmd *cobra.Command) (models.ContextRequest, error) {
	branch, err := cmd.Flags().GetString("branch")
	if err != nil {
		return models.ContextRequest{}, err
	}
	repository, err := cmd.Flags().GetString("repository")
	if err != nil {
		return models.ContextRequest{}, err
	}
	pr, err := cmd.Flags().GetInt("pr")
	if err != nil {
		return models.ContextRequest{}, err
	}

	if branch == "" && (repository == "" || pr <= 0) {
		return models.ContextRequest{}, fmt.Errorf("either --branch or both --repository and --pr are required")
	}

	return models.ContextRequest{
		RepoInfo: &models.RepoInfo{
			Branch:      branch,
			Repository:  repository,
			PullRequest: pr,
		},
	}, nil
}
