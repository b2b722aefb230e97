package assist

import (
	"strings"
)

// DefaultMentionTrigger is the mention that routes a channel message to the
// assistant.
const DefaultMentionTrigger = "@assistant"

// ContainsMention reports whether text mentions the assistant trigger,
// case-insensitively.
func ContainsMention(text, trigger string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(trigger))
}

// ExtractQuery returns the text following the trigger, trimmed. Empty when
// the trigger is absent or nothing follows it.
func ExtractQuery(text, trigger string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(trigger))
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(trigger):])
}
