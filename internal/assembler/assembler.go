// Package assembler turns editor context requests into JIRA context items.
package assembler

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielolaszy/jiractx/internal/cache"
	"github.com/danielolaszy/jiractx/internal/issuekey"
	"github.com/danielolaszy/jiractx/internal/jira"
	"github.com/danielolaszy/jiractx/internal/logging"
	"github.com/danielolaszy/jiractx/pkg/models"
)

// IssueFetcher looks up a single issue. Implementations return an error
// wrapping jira.ErrNotFound when the issue does not exist.
type IssueFetcher interface {
	Fetch(ctx context.Context, key issuekey.Key) (*models.IssueSummary, error)
}

// IssueCache memoizes issue lookups.
type IssueCache interface {
	Get(ctx context.Context, key issuekey.Key, load cache.Loader) (*models.IssueSummary, error)
}

// BranchResolver finds the head branch of a pull request.
type BranchResolver interface {
	ResolveBranch(ctx context.Context, repository string, number int) (string, error)
}

// Assembler builds context items for a branch. It is safe for concurrent use.
type Assembler struct {
	cache    IssueCache
	fetcher  IssueFetcher
	resolver BranchResolver
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithBranchResolver lets requests that name a pull request instead of a
// branch be resolved through resolver.
func WithBranchResolver(resolver BranchResolver) Option {
	return func(a *Assembler) {
		a.resolver = resolver
	}
}

// New creates an Assembler that reads issues through c, loading misses from fetcher.
func New(c IssueCache, fetcher IssueFetcher, opts ...Option) *Assembler {
	a := &Assembler{
		cache:   c,
		fetcher: fetcher,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble returns the context items for branch: one item when the branch
// names an existing issue, none otherwise. Tracker failures are logged and
// produce no items; they never fail the caller.
func (a *Assembler) Assemble(ctx context.Context, branch string) []models.ContextItem {
	items := []models.ContextItem{}
	if branch == "" {
		return items
	}

	key, ok := issuekey.Extract(branch)
	if !ok {
		logging.Debug("no issue key in branch", "branch", branch)
		return items
	}

	summary, err := a.cache.Get(ctx, key, a.load)
	if err != nil {
		logging.Warn("jira lookup failed, returning no context",
			"issue_key", key,
			"branch", branch,
			"error", err)
		return items
	}
	if summary == nil {
		return items
	}

	return append(items, newContextItem(key, summary))
}

// AssembleRequest assembles context for an inbound request, resolving the
// branch from the pull request when the request carries no branch.
func (a *Assembler) AssembleRequest(ctx context.Context, req models.ContextRequest) []models.ContextItem {
	if req.RepoInfo == nil {
		return []models.ContextItem{}
	}

	branch := req.RepoInfo.Branch
	if branch == "" && a.resolver != nil && req.RepoInfo.Repository != "" && req.RepoInfo.PullRequest > 0 {
		resolved, err := a.resolver.ResolveBranch(ctx, req.RepoInfo.Repository, req.RepoInfo.PullRequest)
		if err != nil {
			logging.Warn("failed to resolve pull request branch",
				"repository", req.RepoInfo.Repository,
				"pull_request", req.RepoInfo.PullRequest,
				"error", err)
			return []models.ContextItem{}
		}
		branch = resolved
	}

	return a.Assemble(ctx, branch)
}

// load adapts the fetcher to the cache contract: a missing issue is a nil
// summary, which the cache remembers for the window.
func (a *Assembler) load(ctx context.Context, key issuekey.Key) (*models.IssueSummary, error) {
	summary, err := a.fetcher.Fetch(ctx, key)
	if errors.Is(err, jira.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func newContextItem(key issuekey.Key, summary *models.IssueSummary) models.ContextItem {
	return models.ContextItem{
		Type:    models.ContextItemTypeJiraIssue,
		Title:   fmt.Sprintf("%s: %s", key, summary.Summary),
		Content: renderMarkdown(key, summary),
		Metadata: models.IssueMetadata{
			IssueKey:  key.String(),
			Status:    summary.Status,
			Priority:  summary.Priority,
			Assignee:  summary.Assignee,
			URL:       summary.URL,
			IssueType: summary.IssueType,
		},
	}
}
