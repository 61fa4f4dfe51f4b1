package chat

import (
	"strings"
)

// BuildSystemPrompt composes the assistant persona with optional
// personalization: the user's name and any extracted facts.
func BuildSystemPrompt(userName string, keyFacts []string) string {
	var b strings.Builder

	b.WriteString("You are a helpful, friendly AI assistant. Be direct and concise in your responses.\n\n")

	if userName != "" {
		b.WriteString("The user's name is " + userName + ".")
	}
	if len(keyFacts) > 0 {
		b.WriteString("\nKnown facts:\n")
		for _, fact := range keyFacts {
			b.WriteString("- " + fact + "\n")
		}
	}

	b.WriteString(`
Guidelines:
- Answer questions directly and helpfully
- If you don't know something, say so honestly
- Keep responses focused and relevant
- Use a warm but professional tone
- Format responses with markdown when it helps readability
- Remember context from the conversation

You're having a real conversation. Be natural and helpful.`)

	return b.String()
}
