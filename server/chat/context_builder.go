package chat

import (
	"context"

	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/store"
)

const (
	// DefaultMaxMessagesInContext bounds the turns sent to the model.
	DefaultMaxMessagesInContext = 20
	// DefaultSummaryThreshold is the minimum number of truncated messages
	// before a summarization call is worth its cost.
	DefaultSummaryThreshold = 10
)

// ContextWindow is the bounded, model-ready view of a conversation. It is
// rebuilt fresh on every orchestration and never persisted as-is; the caller
// may persist Summary back onto the conversation.
type ContextWindow struct {
	Messages []ai.Message
	Summary  string
}

// ContextBuilder compacts conversation history into a bounded prompt,
// summarizing truncated older turns through the LLM.
type ContextBuilder struct {
	llm              ai.LLMService
	maxMessages      int
	summaryThreshold int
}

func NewContextBuilder(llm ai.LLMService) *ContextBuilder {
	return &ContextBuilder{
		llm:              llm,
		maxMessages:      DefaultMaxMessagesInContext,
		summaryThreshold: DefaultSummaryThreshold,
	}
}

// Build produces a context window of at most maxMessages turns. When the
// history overflows, older turns are cut off and, past the threshold,
// compressed into a rolling summary. A summarization failure is a hard
// failure: truncating without a summary would silently drop information.
func (b *ContextBuilder) Build(ctx context.Context, history []*store.Message, existingSummary string) (*ContextWindow, error) {
	if len(history) <= b.maxMessages {
		return &ContextWindow{
			Messages: toPromptMessages(history),
			Summary:  existingSummary,
		}, nil
	}

	recent := history[len(history)-b.maxMessages:]
	older := history[:len(history)-b.maxMessages]

	summary := existingSummary
	if len(older) >= b.summaryThreshold {
		refreshed, err := b.summarize(ctx, older, existingSummary)
		if err != nil {
			return nil, ContextBuildFailed(err)
		}
		summary = refreshed
	}

	messages := make([]ai.Message, 0, b.maxMessages+2)
	if summary != "" {
		// A synthetic exchange carries the summary so the model treats it as
		// established conversation state rather than new user input.
		messages = append(messages,
			ai.UserMessage("[Previous conversation summary: "+summary+"]"),
			ai.AssistantMessage("I understand the context from our previous conversation. How can I help you now?"),
		)
	}
	messages = append(messages, toPromptMessages(recent)...)

	return &ContextWindow{Messages: messages, Summary: summary}, nil
}

// toPromptMessages converts stored turns to prompt form, dropping system
// rows; the system prompt is composed separately per request.
func toPromptMessages(history []*store.Message) []ai.Message {
	messages := make([]ai.Message, 0, len(history))
	for _, m := range history {
		if m.Role == store.MessageRoleSystem {
			continue
		}
		messages = append(messages, ai.Message{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return messages
}
