package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Helper for creating system prompts
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// Helper for creating user messages
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// Helper for creating assistant messages
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// Request is a single completion request against a model class.
type Request struct {
	Class    ModelClass
	Messages []Message
	// MaxTokens caps the response; 0 means the class default.
	MaxTokens   int
	Temperature float32
}

// Response is a finished completion with its usage accounting.
type Response struct {
	Content   string
	Model     string
	TokensIn  int
	TokensOut int
	CostCents int32
}

// StreamEvent is one item on a completion stream. Delta carries incremental
// text; the final event has Done set and Response populated.
type StreamEvent struct {
	Delta    string
	Done     bool
	Response *Response
}

// LLMService is the LLM provider interface.
type LLMService interface {
	// Complete performs a synchronous completion.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Stream performs a streaming completion. The event channel closes after
	// the Done event; a provider failure arrives on the error channel instead
	// and no Done event is emitted.
	Stream(ctx context.Context, req *Request) (<-chan StreamEvent, <-chan error)
}

type llmService struct {
	client *openai.Client
	config *Config
}

// NewLLMService creates a new LLMService backed by an OpenAI-compatible API.
func NewLLMService(cfg *Config) (LLMService, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &llmService{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

func (s *llmService) Complete(ctx context.Context, req *Request) (*Response, error) {
	var result *Response
	err := s.doWithRetry(ctx, func() error {
		resp, err := s.client.CreateChatCompletion(ctx, s.buildRequest(req))
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty chat response")
		}

		content := resp.Choices[0].Message.Content
		tokensIn, tokensOut := resp.Usage.PromptTokens, resp.Usage.CompletionTokens
		if tokensIn == 0 && tokensOut == 0 {
			tokensIn, tokensOut = estimateUsage(req.Messages, content)
		}
		result = &Response{
			Content:   content,
			Model:     resp.Model,
			TokensIn:  tokensIn,
			TokensOut: tokensOut,
			CostCents: CostCents(req.Class, tokensIn, tokensOut),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete chat: %w", err)
	}

	return result, nil
}

func (s *llmService) Stream(ctx context.Context, req *Request) (<-chan StreamEvent, <-chan error) {
	eventChan := make(chan StreamEvent)
	errChan := make(chan error, 1)

	go func() {
		defer close(eventChan)
		defer close(errChan)

		openaiReq := s.buildRequest(req)
		openaiReq.Stream = true
		openaiReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

		stream, err := s.client.CreateChatCompletionStream(ctx, openaiReq)
		if err != nil {
			errChan <- fmt.Errorf("failed to open completion stream: %w", err)
			return
		}
		defer stream.Close()

		var content strings.Builder
		var usage *openai.Usage
		model := s.config.ModelName(req.Class)

		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				errChan <- fmt.Errorf("completion stream failed: %w", err)
				return
			}

			if chunk.Model != "" {
				model = chunk.Model
			}
			// The usage-only chunk arrives last with an empty choice list.
			if chunk.Usage != nil {
				usage = chunk.Usage
			}
			if len(chunk.Choices) == 0 {
				continue
			}

			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			content.WriteString(delta)

			select {
			case eventChan <- StreamEvent{Delta: delta}:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}

		text := content.String()
		var tokensIn, tokensOut int
		if usage != nil {
			tokensIn, tokensOut = usage.PromptTokens, usage.CompletionTokens
		} else {
			tokensIn, tokensOut = estimateUsage(req.Messages, text)
		}

		done := StreamEvent{
			Done: true,
			Response: &Response{
				Content:   text,
				Model:     model,
				TokensIn:  tokensIn,
				TokensOut: tokensOut,
				CostCents: CostCents(req.Class, tokensIn, tokensOut),
			},
		}
		select {
		case eventChan <- done:
		case <-ctx.Done():
			errChan <- ctx.Err()
		}
	}()

	return eventChan, errChan
}

func (s *llmService) buildRequest(req *Request) openai.ChatCompletionRequest {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = req.Class.Spec().MaxTokens
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	return openai.ChatCompletionRequest{
		Model:       s.config.ModelName(req.Class),
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
}

// estimateUsage falls back to the chars/4 heuristic when the provider does
// not report token usage.
func estimateUsage(messages []Message, completion string) (int, int) {
	tokensIn := 0
	for _, m := range messages {
		tokensIn += EstimateTokens(m.Content)
	}
	return tokensIn, EstimateTokens(completion)
}

// doWithRetry executes a function with exponential backoff retry.
func (s *llmService) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < s.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < s.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("LLM request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
