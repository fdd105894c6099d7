package model

import "strings"

// ParseRelatedTasks splits a semicolon-delimited related-task list into
// entries. Each entry is "summary|url"; an entry without a pipe is treated as
// a bare URL with no summary. Blank entries are dropped.
func ParseRelatedTasks(links string) []RelatedTask {
	if links == "" {
		return nil
	}
	var out []RelatedTask
	for _, raw := range strings.Split(links, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		summary, url, ok := strings.Cut(raw, "|")
		if !ok || url == "" {
			url = summary
			summary = ""
		}
		out = append(out, RelatedTask{Summary: summary, URL: url})
	}
	return out
}

// JoinRelatedTasks is the inverse of ParseRelatedTasks; entries without a URL
// are dropped.
func JoinRelatedTasks(tasks []RelatedTask) string {
	var parts []string
	for _, t := range tasks {
		if strings.TrimSpace(t.URL) == "" {
			continue
		}
		parts = append(parts, t.Summary+"|"+t.URL)
	}
	return strings.Join(parts, ";")
}
