package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/store"
)

const summarizerSystemPrompt = "You are a summarization assistant. Be concise and factual."

// summarize compresses a batch of older messages into a rolling summary,
// merging a prior summary when one exists. Uses the cheapest model class;
// the summary feeds a larger request, it is not user-facing prose.
func (b *ContextBuilder) summarize(ctx context.Context, older []*store.Message, existingSummary string) (string, error) {
	lines := make([]string, 0, len(older))
	for _, m := range older {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, m.Content))
	}
	conversationText := strings.Join(lines, "\n")

	var prompt string
	if existingSummary != "" {
		prompt = fmt.Sprintf(
			"Previous summary: %s\n\nNew messages:\n%s\n\nUpdate the summary to include the key points from the new messages. Keep it under 200 words.",
			existingSummary, conversationText)
	} else {
		prompt = fmt.Sprintf(
			"Summarize this conversation, focusing on key facts, decisions, and context that would be important for continuing the conversation:\n\n%s\n\nKeep the summary under 200 words.",
			conversationText)
	}

	resp, err := b.llm.Complete(ctx, &ai.Request{
		Class: ai.ModelClassHaiku,
		Messages: []ai.Message{
			ai.SystemPrompt(summarizerSystemPrompt),
			ai.UserMessage(prompt),
		},
		MaxTokens: 300,
	})
	if err != nil {
		return "", err
	}

	return resp.Content, nil
}
