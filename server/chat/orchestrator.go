package chat

import (
	"context"
	"log/slog"

	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/store"
)

// EventType marks one item on the orchestration output channel.
type EventType string

const (
	// EventTypeText carries an incremental content delta.
	EventTypeText EventType = "text"
	// EventTypeDone is the terminal event of a successful orchestration and
	// carries the structured result.
	EventTypeDone EventType = "done"
)

// Event is one item forwarded to the orchestration caller. Exactly one Done
// event terminates a successful run; failures arrive on the error channel
// instead and no Done event is emitted.
type Event struct {
	Type    EventType
	Content string
	Result  *Result
}

// Input is everything one chat turn needs. History is the prior conversation
// only; the new user message is appended by the orchestrator.
type Input struct {
	UserMessage     string
	History         []*store.Message
	UserID          int32
	Tier            store.Tier
	UserName        string
	ExistingSummary string
}

// Result is the finished turn for the caller to persist. Summary is the
// (possibly refreshed) rolling summary the caller should write back onto the
// conversation.
type Result struct {
	Content   string
	TokensIn  int
	TokensOut int
	Model     ai.ModelClass
	ModelName string
	CostCents int32
	// Cached is reserved; no semantic cache exists, so always false.
	Cached  bool
	Summary string
}

// Orchestrator composes routing, context building and streamed generation
// for one chat turn. It holds no mutable state and never writes to storage;
// persistence on both sides of a turn is the transport layer's job.
type Orchestrator struct {
	llm     ai.LLMService
	builder *ContextBuilder
}

func NewOrchestrator(llm ai.LLMService) *Orchestrator {
	return &Orchestrator{
		llm:     llm,
		builder: NewContextBuilder(llm),
	}
}

// Orchestrate runs one chat turn. Text events preserve the provider's
// emission order; canceling ctx tears down the in-flight provider stream.
func (o *Orchestrator) Orchestrate(ctx context.Context, input *Input) (<-chan Event, <-chan error) {
	eventChan := make(chan Event)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventChan)
		defer close(errChan)

		decision := Route(RouterInput{
			Message:            input.UserMessage,
			ConversationLength: len(input.History),
			Tier:               input.Tier,
		})
		slog.Info("model routed",
			slog.String("model", string(decision.Model)),
			slog.String("reason", decision.Reason),
			slog.Int("user_id", int(input.UserID)))

		window, err := o.builder.Build(ctx, input.History, input.ExistingSummary)
		if err != nil {
			errChan <- err
			return
		}

		keyFacts := ExtractKeyFacts(input.History)
		systemPrompt := BuildSystemPrompt(input.UserName, keyFacts)

		messages := make([]ai.Message, 0, len(window.Messages)+2)
		messages = append(messages, ai.SystemPrompt(systemPrompt))
		messages = append(messages, window.Messages...)
		messages = append(messages, ai.UserMessage(input.UserMessage))

		events, streamErrs := o.llm.Stream(ctx, &ai.Request{
			Class:    decision.Model,
			Messages: messages,
		})

		var final *ai.Response
		for events != nil || streamErrs != nil {
			select {
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if ev.Done {
					final = ev.Response
					continue
				}
				select {
				case eventChan <- Event{Type: EventTypeText, Content: ev.Delta}:
				case <-ctx.Done():
					errChan <- ProviderStreamFailed(ctx.Err())
					return
				}
			case streamErr, ok := <-streamErrs:
				if !ok {
					streamErrs = nil
					continue
				}
				if streamErr != nil {
					errChan <- ProviderStreamFailed(streamErr)
					return
				}
			}
		}

		// Defensive: the adapter contract says a clean stream always ends
		// with a terminal response.
		if final == nil {
			errChan <- NoResponse()
			return
		}

		result := &Result{
			Content:   final.Content,
			TokensIn:  final.TokensIn,
			TokensOut: final.TokensOut,
			Model:     decision.Model,
			ModelName: final.Model,
			CostCents: final.CostCents,
			Cached:    false,
			Summary:   window.Summary,
		}
		select {
		case eventChan <- Event{Type: EventTypeDone, Result: result}:
		case <-ctx.Done():
			errChan <- ProviderStreamFailed(ctx.Err())
		}
	}()

	return eventChan, errChan
}
