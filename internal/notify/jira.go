package notify

import (
	"regexp"
	"strings"
)

var jiraIDPattern = regexp.MustCompile(`(?i)(?:browse/|selectedIssue=)([A-Z0-9]+-[0-9]+)`)

// ExtractJiraID pulls the issue key out of a Jira task URL, uppercased.
// Empty when the URL carries none.
func ExtractJiraID(url string) string {
	m := jiraIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
