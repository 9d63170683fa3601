// Package github resolves pull request branches through the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/jiractx/internal/config"
	"github.com/danielolaszy/jiractx/internal/logging"
)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client
}

// apiURL returns the REST endpoint for a GitHub or GitHub Enterprise domain.
func apiURL(domain string) string {
	if domain == "" || domain == "github.com" {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

// NewClient creates a GitHub API client for the configured domain.
func NewClient(cfg config.GitHubConfig) (*Client, error) {
	if cfg.Token == "" {
		return nil, &config.ConfigurationError{Missing: []string{"GITHUB_TOKEN"}}
	}

	endpoint := apiURL(cfg.Domain)
	logging.Info("github configuration",
		"domain", cfg.Domain,
		"api_url", endpoint,
		"token", logging.MaskSensitive(cfg.Token))

	return newClient(cfg.Token, endpoint)
}

func newClient(token, endpoint string) (*Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	client := github.NewClient(tc)

	if endpoint != "https://api.github.com/" {
		parsedURL, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	return &Client{client: client}, nil
}

// ResolveBranch returns the head branch of a pull request.
// The repository should be in the format "owner/repo".
func (c *Client) ResolveBranch(ctx context.Context, repository string, number int) (string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	if number <= 0 {
		return "", fmt.Errorf("invalid pull request number: %d", number)
	}

	pr, _, err := c.client.PullRequests.Get(ctx, parts[0], parts[1], number)
	if err != nil {
		return "", fmt.Errorf("failed to get pull request %s#%d: %w", repository, number, err)
	}

	branch := pr.GetHead().GetRef()
	logging.Debug("resolved pull request branch",
		"repository", repository,
		"pull_request", number,
		"branch", branch)

	return branch, nil
}
