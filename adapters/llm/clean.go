package llm

import "strings"

// cleanJSONContent strips markdown fences and conversational preamble that
// models sometimes wrap around structured output.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		if trimmed == "" ||
			strings.HasPrefix(lower, "here is") ||
			strings.HasPrefix(lower, "the json") ||
			strings.HasPrefix(lower, "output:") ||
			strings.HasPrefix(lower, "response:") ||
			strings.HasPrefix(lower, "##") {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	content = strings.TrimSpace(strings.Join(cleaned, "\n"))

	// Prefix chatter on the same blob as the object: keep from the first
	// brace onward.
	if idx := strings.Index(content, "\n{"); idx > 0 {
		head := content[:idx]
		if !strings.ContainsAny(head, "{[") {
			content = content[idx+1:]
		}
	}

	return content
}
