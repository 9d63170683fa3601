// Package models defines data structures shared across the application.
package models

import (
	"slices"
	"time"
)

// ContextItemTypeJiraIssue is the type tag of context items built from Jira issues.
const ContextItemTypeJiraIssue = "jira_issue"

// IssueSummary represents the subset of a JIRA issue surfaced to editors.
type IssueSummary struct {
	// Summary is the issue's one-line title
	Summary string

	// Description is the full body text, or a placeholder when empty
	Description string

	// Status is the workflow status name (e.g., "In Progress")
	Status string

	// Priority is the priority name, "Not set" when the issue has none
	Priority string

	// Assignee is the assignee's display name, "Unassigned" when nobody is
	Assignee string

	// Created is the timestamp when the issue was created
	Created time.Time

	// Updated is the timestamp when the issue was last updated
	Updated time.Time

	// URL is the browser link to the issue
	URL string

	// IssueType is the JIRA issue type (e.g., "Story", "Bug")
	IssueType string

	// Components lists component names in tracker order, never nil
	Components []string

	// Labels lists label names in tracker order, never nil
	Labels []string
}

// Clone returns a deep copy of s. A nil summary clones to nil.
func (s *IssueSummary) Clone() *IssueSummary {
	if s == nil {
		return nil
	}
	c := *s
	c.Components = slices.Clone(s.Components)
	c.Labels = slices.Clone(s.Labels)
	return &c
}

// ProjectIssue is one row of a project issue listing.
type ProjectIssue struct {
	Key       string    `json:"key"`
	Summary   string    `json:"summary"`
	Status    string    `json:"status"`
	Assignee  string    `json:"assignee"`
	IssueType string    `json:"issuetype"`
	Updated   time.Time `json:"updated"`
}

// RepoInfo describes the source-control state of the editor workspace.
type RepoInfo struct {
	Branch      string `json:"branch,omitempty"`
	Repository  string `json:"repository,omitempty"`
	PullRequest int    `json:"pullRequest,omitempty"`
}

// ContextRequest is the inbound body of a context request.
type ContextRequest struct {
	FilePath  string    `json:"filePath,omitempty"`
	Selection string    `json:"selection,omitempty"`
	FilePaths []string  `json:"filePaths,omitempty"`
	RepoInfo  *RepoInfo `json:"repoInfo,omitempty"`
}

// IssueMetadata carries the machine-readable fields of a jira_issue context item.
type IssueMetadata struct {
	IssueKey  string `json:"issue_key"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	Assignee  string `json:"assignee"`
	URL       string `json:"url"`
	IssueType string `json:"issuetype"`
}

// ContextItem is a single piece of context handed back to the editor.
type ContextItem struct {
	Type     string        `json:"type"`
	Title    string        `json:"title"`
	Content  string        `json:"content"`
	Metadata IssueMetadata `json:"metadata"`
}

// ContextResponse is the outbound body of a context request.
type ContextResponse struct {
	Context []ContextItem `json:"context"`
}
