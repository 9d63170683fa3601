package cmd

import (
	"fmt"

	"github.com/danielolaszy/jiractx/internal/assembler"
	"github.com/danielolaszy/jiractx/internal/cache"
	"github.com/danielolaszy/jiractx/internal/config"
	"github.com/danielolaszy/jiractx/internal/github"
	"github.com/danielolaszy/jiractx/internal/jira"
	"github.com/danielolaszy/jiractx/internal/logging"
)

// newAssembler builds the JIRA client, the issue cache and, when a GitHub
// token is configured, the pull request resolver. Missing JIRA settings are
// returned as a *config.ConfigurationError.
func newAssembler(cfg *config.Config) (*assembler.Assembler, error) {
	jiraClient, err := jira.NewClient(cfg.Jira)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jira client: %w", err)
	}

	issueCache, err := cache.New(cache.Config{
		TTL:      cfg.Cache.TTL,
		Capacity: cfg.Cache.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize issue cache: %w", err)
	}

	var opts []assembler.Option
	if cfg.GitHub.Token != "" {
		githubClient, err := github.NewClient(cfg.GitHub)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize github client: %w", err)
		}
		opts = append(opts, assembler.WithBranchResolver(githubClient))
	} else {
		logging.Debug("GITHUB_TOKEN not set, pull request branch lookup disabled")
	}

	logging.Info("issue cache configured",
		"ttl", issueCache.TTL(),
		"capacity", cfg.Cache.Size)

	return assembler.New(issueCache, jiraClient, opts...), nil
}
