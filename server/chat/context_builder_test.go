package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/store"
)

func historyOf(n int) []*store.Message {
	messages := make([]*store.Message, 0, n)
	for i := 0; i < n; i++ {
		role := store.MessageRoleUser
		if i%2 == 1 {
			role = store.MessageRoleAssistant
		}
		messages = append(messages, &store.Message{
			ID:      int32(i + 1),
			Role:    role,
			Content: fmt.Sprintf("message %d", i+1),
		})
	}
	return messages
}

func TestContextBuilder_ShortHistoryPassesThrough(t *testing.T) {
	llm := &stubLLM{}
	builder := NewContextBuilder(llm)

	window, err := builder.Build(context.Background(), historyOf(8), "prior summary")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(window.Messages) != 8 {
		t.Errorf("expected 8 messages, got %d", len(window.Messages))
	}
	if window.Summary != "prior summary" {
		t.Errorf("expected summary passed through, got %q", window.Summary)
	}
	if llm.completeCalls != 0 {
		t.Errorf("expected no summarization call, got %d", llm.completeCalls)
	}
}

func TestContextBuilder_Boundedness(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 35, 120} {
		llm := &stubLLM{completeResp: &ai.Response{Content: "the summary"}}
		builder := NewContextBuilder(llm)

		window, err := builder.Build(context.Background(), historyOf(n), "")
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}

		conversational := 0
		for _, m := range window.Messages {
			if !strings.HasPrefix(m.Content, "[Previous conversation summary") &&
				!strings.HasPrefix(m.Content, "I understand the context") {
				conversational++
			}
		}
		if conversational > DefaultMaxMessagesInContext {
			t.Errorf("n=%d: window has %d conversational turns, max is %d", n, conversational, DefaultMaxMessagesInContext)
		}
	}
}

func TestContextBuilder_SummaryTrigger(t *testing.T) {
	llm := &stubLLM{completeResp: &ai.Response{Content: "fresh summary"}}
	builder := NewContextBuilder(llm)

	// 35 messages: 15 older, past the threshold of 10.
	window, err := builder.Build(context.Background(), historyOf(35), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if llm.completeCalls != 1 {
		t.Fatalf("expected 1 summarization call, got %d", llm.completeCalls)
	}
	if window.Summary != "fresh summary" {
		t.Errorf("expected refreshed summary, got %q", window.Summary)
	}

	// The summary rides in as a synthetic user/assistant exchange ahead of
	// the recent turns.
	if len(window.Messages) != DefaultMaxMessagesInContext+2 {
		t.Fatalf("expected %d messages, got %d", DefaultMaxMessagesInContext+2, len(window.Messages))
	}
	if window.Messages[0].Role != "user" || !strings.Contains(window.Messages[0].Content, "fresh summary") {
		t.Errorf("expected summary turn first, got %+v", window.Messages[0])
	}
	if window.Messages[1].Role != "assistant" {
		t.Errorf("expected assistant acknowledgement second, got %+v", window.Messages[1])
	}
	if got := window.Messages[2].Content; got != "message 16" {
		t.Errorf("expected recent turns to start at message 16, got %q", got)
	}
}

func TestContextBuilder_BelowThresholdKeepsExistingSummary(t *testing.T) {
	llm := &stubLLM{completeResp: &ai.Response{Content: "should not be called"}}
	builder := NewContextBuilder(llm)

	// 25 messages: only 5 older, below the threshold.
	window, err := builder.Build(context.Background(), historyOf(25), "existing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if llm.completeCalls != 0 {
		t.Errorf("expected no summarization below threshold, got %d calls", llm.completeCalls)
	}
	if window.Summary != "existing" {
		t.Errorf("expected existing summary kept, got %q", window.Summary)
	}
}

func TestContextBuilder_BelowThresholdWithoutSummary(t *testing.T) {
	llm := &stubLLM{}
	builder := NewContextBuilder(llm)

	window, err := builder.Build(context.Background(), historyOf(25), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if window.Summary != "" {
		t.Errorf("expected no summary, got %q", window.Summary)
	}
	if len(window.Messages) != DefaultMaxMessagesInContext {
		t.Errorf("expected %d messages without a summary pair, got %d", DefaultMaxMessagesInContext, len(window.Messages))
	}
}

func TestContextBuilder_SummarizerFailureIsHard(t *testing.T) {
	llm := &stubLLM{completeErr: errors.New("upstream down")}
	builder := NewContextBuilder(llm)

	_, err := builder.Build(context.Background(), historyOf(40), "")
	if err == nil {
		t.Fatal("expected error when summarization fails")
	}
	if !IsCode(err, ErrCodeContextBuildFailed) {
		t.Errorf("expected %s, got %v", ErrCodeContextBuildFailed, err)
	}
}

func TestContextBuilder_FiltersSystemMessages(t *testing.T) {
	history := historyOf(4)
	history = append(history, &store.Message{ID: 99, Role: store.MessageRoleSystem, Content: "internal"})

	builder := NewContextBuilder(&stubLLM{})
	window, err := builder.Build(context.Background(), history, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range window.Messages {
		if m.Role == "system" {
			t.Errorf("system message leaked into the window: %+v", m)
		}
	}
}
