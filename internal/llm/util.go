package llm

import "strings"

// CleanJSONBlock removes the Markdown fence models often wrap JSON in.
// A leading "```json" and a trailing "```" are each removed when present;
// surrounding whitespace is trimmed at every step. Nothing else is altered.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimSpace(strings.TrimPrefix(text, "```json"))
	}
	if strings.HasSuffix(text, "```") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "```"))
	}
	return text
}
