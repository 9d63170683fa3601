// Package jira fetches issue summaries from JIRA for the context cache.
package jira

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	jira "github.com/andygrunwald/go-jira"

	"github.com/danielolaszy/jiractx/internal/config"
	"github.com/danielolaszy/jiractx/internal/issuekey"
	"github.com/danielolaszy/jiractx/internal/logging"
	"github.com/danielolaszy/jiractx/internal/metrics"
	"github.com/danielolaszy/jiractx/pkg/models"
)

const (
	defaultDescription = "No description provided"
	defaultPriority    = "Not set"
	defaultAssignee    = "Unassigned"

	requestTimeout = 10 * time.Second

	// DefaultProjectIssues is the listing size used when none is requested.
	DefaultProjectIssues = 50
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)

// ErrNotFound reports that JIRA has no issue with the requested key.
var ErrNotFound = errors.New("jira issue not found")

// GatewayError reports any JIRA failure other than a missing issue:
// authentication, transport, or an unreadable response. Key is the issue or
// project that was being looked up.
type GatewayError struct {
	Key        issuekey.Key
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("jira lookup of %s failed: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("jira lookup of %s failed (status: %d): %v", e.Key, e.StatusCode, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Client handles interactions with the JIRA API
type Client struct {
	client    *jira.Client
	serverURL string
	log       *slog.Logger
}

// NewClient creates a JIRA client authenticated with email and API token.
// It returns a *config.ConfigurationError when any setting is missing, so the
// service never attempts an unauthenticated call.
func NewClient(cfg config.JiraConfig) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	tp := jira.BasicAuthTransport{
		Username: cfg.Email,
		Password: cfg.APIToken,
	}
	httpClient := tp.Client()
	httpClient.Timeout = requestTimeout

	client, err := jira.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	log := logging.With("component", "jira")
	log.Info("jira client configured",
		"url", cfg.URL,
		"email", cfg.Email,
		"api_token", logging.MaskSensitive(cfg.APIToken))

	return &Client{
		client:    client,
		serverURL: cfg.URL,
		log:       log,
	}, nil
}

// Fetch retrieves the summary of the issue identified by key.
// It returns ErrNotFound for a 404 and a *GatewayError for every other failure.
func (c *Client) Fetch(ctx context.Context, key issuekey.Key) (*models.IssueSummary, error) {
	if c.client == nil {
		return nil, &GatewayError{Key: key, Err: errors.New("jira client not initialized")}
	}

	start := time.Now()
	issue, resp, err := c.client.Issue.GetWithContext(ctx, key.String(), nil)
	statusCode := observe(resp, start)

	if err != nil {
		if statusCode == http.StatusNotFound {
			c.log.Warn("jira issue not found", "issue_key", key)
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		c.log.Error("failed to retrieve jira issue",
			"issue_key", key,
			"status_code", statusCode,
			"error", err)
		return nil, &GatewayError{Key: key, StatusCode: statusCode, Err: err}
	}

	if issue == nil || issue.Fields == nil {
		return nil, &GatewayError{Key: key, StatusCode: statusCode, Err: errors.New("response has no issue fields")}
	}

	return c.toSummary(key, issue.Fields), nil
}

// toSummary copies the fields editors care about, filling defaults for optional ones.
func (c *Client) toSummary(key issuekey.Key, fields *jira.IssueFields) *models.IssueSummary {
	summary := &models.IssueSummary{
		Summary:     fields.Summary,
		Description: fields.Description,
		Priority:    defaultPriority,
		Assignee:    defaultAssignee,
		Created:     time.Time(fields.Created),
		Updated:     time.Time(fields.Updated),
		URL:         fmt.Sprintf("%s/browse/%s", c.serverURL, key),
		IssueType:   fields.Type.Name,
		Components:  []string{},
		Labels:      []string{},
	}

	if summary.Description == "" {
		summary.Description = defaultDescription
	}
	if fields.Status != nil {
		summary.Status = fields.Status.Name
	}
	if fields.Priority != nil && fields.Priority.Name != "" {
		summary.Priority = fields.Priority.Name
	}
	if fields.Assignee != nil && fields.Assignee.DisplayName != "" {
		summary.Assignee = fields.Assignee.DisplayName
	}
	for _, component := range fields.Components {
		if component != nil {
			summary.Components = append(summary.Components, component.Name)
		}
	}
	summary.Labels = append(summary.Labels, fields.Labels...)

	return summary
}

// ProjectIssues lists up to limit issues of projectKey, most recently updated
// first. A non-positive limit selects DefaultProjectIssues.
func (c *Client) ProjectIssues(ctx context.Context, projectKey string, limit int) ([]models.ProjectIssue, error) {
	if c.client == nil {
		return nil, &GatewayError{Key: issuekey.Key(projectKey), Err: errors.New("jira client not initialized")}
	}

	projectKey = strings.ToUpper(strings.TrimSpace(projectKey))
	if !projectKeyPattern.MatchString(projectKey) {
		return nil, fmt.Errorf("invalid project key %q", projectKey)
	}
	if limit <= 0 {
		limit = DefaultProjectIssues
	}

	jql := fmt.Sprintf(`project = "%s" ORDER BY updated DESC`, projectKey)
	start := time.Now()
	issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, &jira.SearchOptions{MaxResults: limit})
	statusCode := observe(resp, start)

	if err != nil {
		c.log.Error("failed to search jira issues",
			"project", projectKey,
			"status_code", statusCode,
			"error", err)
		return nil, &GatewayError{Key: issuekey.Key(projectKey), StatusCode: statusCode, Err: err}
	}

	result := make([]models.ProjectIssue, 0, len(issues))
	for _, issue := range issues {
		if issue.Fields == nil {
			continue
		}
		row := models.ProjectIssue{
			Key:       issue.Key,
			Summary:   issue.Fields.Summary,
			Assignee:  defaultAssignee,
			IssueType: issue.Fields.Type.Name,
			Updated:   time.Time(issue.Fields.Updated),
		}
		if issue.Fields.Status != nil {
			row.Status = issue.Fields.Status.Name
		}
		if issue.Fields.Assignee != nil && issue.Fields.Assignee.DisplayName != "" {
			row.Assignee = issue.Fields.Assignee.DisplayName
		}
		result = append(result, row)
	}

	c.log.Debug("listed project issues", "project", projectKey, "count", len(result))
	return result, nil
}

// observe records request latency and returns the HTTP status, 0 when no response arrived.
func observe(resp *jira.Response, start time.Time) int {
	statusCode := 0
	if resp != nil && resp.Response != nil {
		statusCode = resp.StatusCode
	}
	metrics.JiraRequestSeconds.
		WithLabelValues(strconv.Itoa(statusCode)).
		Observe(time.Since(start).Seconds())
	return statusCode
}
