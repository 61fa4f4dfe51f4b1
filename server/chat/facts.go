package chat

import (
	"regexp"
	"strings"

	"github.com/openclaw/assistant/store"
)

// Best-effort personalization only. These patterns harvest facts the user
// stated explicitly; anything subtler belongs to the summary, not here.
var (
	namePattern     = regexp.MustCompile(`(?i)my name is (\w+)`)
	jobPattern      = regexp.MustCompile(`(?i)i (work as|am) an? ([\w\s]+)`)
	locationPattern = regexp.MustCompile(`(?i)i('m| am) (in|from) ([\w\s,]+)`)
)

// ExtractKeyFacts scans message text for short personalization facts used to
// enrich the system prompt. Results are deduplicated, in discovery order.
func ExtractKeyFacts(messages []*store.Message) []string {
	facts := make([]string, 0)
	seen := make(map[string]bool)

	add := func(fact string) {
		if !seen[fact] {
			seen[fact] = true
			facts = append(facts, fact)
		}
	}

	for _, msg := range messages {
		if m := namePattern.FindStringSubmatch(msg.Content); m != nil {
			add("User's name: " + m[1])
		}
		if m := jobPattern.FindStringSubmatch(msg.Content); m != nil {
			add("User's occupation: " + strings.TrimSpace(m[2]))
		}
		if m := locationPattern.FindStringSubmatch(msg.Content); m != nil {
			add("User's location: " + strings.TrimSpace(m[3]))
		}
	}

	return facts
}
