package assembler

import (
	"fmt"
	"strings"

	"github.com/danielolaszy/jiractx/internal/issuekey"
	"github.com/danielolaszy/jiractx/pkg/models"
)

const timeLayout = "2006-01-02 15:04 MST"

// renderMarkdown formats an issue summary as the body of a context item.
func renderMarkdown(key issuekey.Key, summary *models.IssueSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s: %s\n\n", key, summary.Summary)
	fmt.Fprintf(&b, "- **Type:** %s\n", summary.IssueType)
	fmt.Fprintf(&b, "- **Status:** %s\n", summary.Status)
	fmt.Fprintf(&b, "- **Priority:** %s\n", summary.Priority)
	fmt.Fprintf(&b, "- **Assignee:** %s\n", summary.Assignee)
	if len(summary.Components) > 0 {
		fmt.Fprintf(&b, "- **Components:** %s\n", strings.Join(summary.Components, ", "))
	}
	if len(summary.Labels) > 0 {
		fmt.Fprintf(&b, "- **Labels:** %s\n", strings.Join(summary.Labels, ", "))
	}
	if !summary.Created.IsZero() {
		fmt.Fprintf(&b, "- **Created:** %s\n", summary.Created.UTC().Format(timeLayout))
	}
	if !summary.Updated.IsZero() {
		fmt.Fprintf(&b, "- **Updated:** %s\n", summary.Updated.UTC().Format(timeLayout))
	}

	b.WriteString("\n## Description\n\n")
	b.WriteString(strings.TrimSpace(summary.Description))
	b.WriteString("\n")

	if summary.URL != "" {
		fmt.Fprintf(&b, "\n[View in JIRA](%s)\n", summary.URL)
	}

	return b.String()
}
