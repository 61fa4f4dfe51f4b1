package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/openclaw/assistant/server/billing"
	"github.com/openclaw/assistant/server/chat"
	"github.com/openclaw/assistant/store"
)

const maxMessageLen = 10000

type sendMessageRequest struct {
	Content string `json:"content"`
	// ConversationUID is only consumed by the quick-chat endpoint; when empty
	// a new conversation is created on the fly.
	ConversationUID string `json:"conversationId"`
}

func (r *sendMessageRequest) validate() error {
	if r.Content == "" {
		return fmt.Errorf("content is required")
	}
	if len(r.Content) > maxMessageLen {
		return fmt.Errorf("content exceeds %d characters", maxMessageLen)
	}
	return nil
}

// SendMessage appends a user message to an existing conversation and streams
// the assistant reply over SSE.
func (s *APIV1Service) SendMessage(c echo.Context) error {
	user := currentUser(c)
	req := &sendMessageRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.checkChatAllowed(c, user); err != nil {
		return err
	}

	conv, err := s.findOwnedConversation(c, user)
	if err != nil {
		return err
	}

	return s.streamChatTurn(c, user, conv, req.Content, false)
}

// QuickChat streams a reply without an explicit conversation, creating one on
// the fly and announcing its UID as the first SSE event.
func (s *APIV1Service) QuickChat(c echo.Context) error {
	user := currentUser(c)
	req := &sendMessageRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := s.checkChatAllowed(c, user); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var conv *store.Conversation
	if req.ConversationUID != "" {
		found, err := s.Store.GetConversation(ctx, &store.FindConversation{UID: &req.ConversationUID})
		if err != nil {
			slog.Error("failed to get conversation", slog.String("error", err.Error()))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load conversation")
		}
		if found == nil || found.UserID != user.ID {
			return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
		}
		conv = found
	} else {
		now := time.Now().Unix()
		created, err := s.Store.CreateConversation(ctx, &store.Conversation{
			UID:       shortuuid.New(),
			UserID:    user.ID,
			Title:     truncateTitle(req.Content),
			Context:   "{}",
			CreatedTs: now,
			UpdatedTs: now,
		})
		if err != nil {
			slog.Error("failed to create conversation", slog.String("error", err.Error()))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to create conversation")
		}
		conv = created
	}

	return s.streamChatTurn(c, user, conv, req.Content, true)
}

// checkChatAllowed runs the pre-stream gates: provider availability, per-user
// rate limit, billing quota.
func (s *APIV1Service) checkChatAllowed(c echo.Context, user *store.User) error {
	if s.Orchestrator == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "ai provider is not configured")
	}
	if !s.chatLimiter.AllowUser(user.ID) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many messages, please slow down")
	}

	decision, err := s.BillingService.CheckQuota(c.Request().Context(), user, time.Now())
	if err != nil {
		slog.Error("quota check failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check quota")
	}
	if !decision.Allowed {
		return echo.NewHTTPError(http.StatusForbidden, decision.Reason)
	}
	return nil
}

// streamChatTurn persists the user message, orchestrates the reply and
// streams it as SSE. The assistant message, refreshed summary and usage
// counters are persisted exactly once, after a successful stream.
func (s *APIV1Service) streamChatTurn(c echo.Context, user *store.User, conv *store.Conversation, content string, announceConversation bool) error {
	ctx := c.Request().Context()
	now := time.Now()

	// History is bounded by the tier's memory window and loaded before the
	// new user message is written.
	cutoff := billing.RetentionCutoffTs(user.Tier, now)
	history, err := s.Store.ListMessages(ctx, &store.FindMessage{
		ConversationID: &conv.ID,
		CreatedAfterTs: &cutoff,
	})
	if err != nil {
		slog.Error("failed to load history", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load history")
	}

	if _, err := s.Store.CreateMessage(ctx, &store.Message{
		UID:            shortuuid.New(),
		ConversationID: conv.ID,
		Role:           store.MessageRoleUser,
		Content:        content,
		Channel:        store.ChannelWeb,
		CreatedTs:      now.Unix(),
	}); err != nil {
		slog.Error("failed to persist user message", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save message")
	}

	update := &store.UpdateConversation{ID: conv.ID}
	nowTs := now.Unix()
	update.UpdatedTs = &nowTs
	if conv.Title == "" {
		title := truncateTitle(content)
		update.Title = &title
	}
	if _, err := s.Store.UpdateConversation(ctx, update); err != nil {
		slog.Error("failed to touch conversation", slog.String("error", err.Error()))
	}

	if err := s.chatSemaphore.Acquire(ctx, 1); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "server is busy")
	}
	defer s.chatSemaphore.Release(1)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	if announceConversation {
		writeSSE(resp, "conversation", map[string]string{"conversationId": conv.UID})
	}

	events, errs := s.Orchestrator.Orchestrate(ctx, &chat.Input{
		UserMessage:     content,
		History:         history,
		UserID:          user.ID,
		Tier:            user.Tier,
		UserName:        user.Name,
		ExistingSummary: conv.Summary,
	})

	var result *chat.Result
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			switch ev.Type {
			case chat.EventTypeText:
				writeSSE(resp, "text", map[string]string{"content": ev.Content})
			case chat.EventTypeDone:
				result = ev.Result
			}
		case streamErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if streamErr != nil {
				slog.Error("chat orchestration failed",
					slog.Int("user_id", int(user.ID)),
					slog.String("conversation", conv.UID),
					slog.String("error", streamErr.Error()))
				writeSSE(resp, "error", map[string]string{"error": "An error occurred while generating the response"})
				return nil
			}
		}
	}
	if result == nil {
		writeSSE(resp, "error", map[string]string{"error": "An error occurred while generating the response"})
		return nil
	}

	tokensIn, tokensOut, costCents := int32(result.TokensIn), int32(result.TokensOut), result.CostCents
	assistantMsg, err := s.Store.CreateMessage(ctx, &store.Message{
		UID:            shortuuid.New(),
		ConversationID: conv.ID,
		Role:           store.MessageRoleAssistant,
		Content:        result.Content,
		Channel:        store.ChannelWeb,
		Model:          &result.ModelName,
		TokensIn:       &tokensIn,
		TokensOut:      &tokensOut,
		CostCents:      &costCents,
		Cached:         result.Cached,
		CreatedTs:      time.Now().Unix(),
	})
	if err != nil {
		slog.Error("failed to persist assistant message", slog.String("error", err.Error()))
		writeSSE(resp, "error", map[string]string{"error": "An error occurred while saving the response"})
		return nil
	}

	if result.Summary != conv.Summary {
		doneTs := time.Now().Unix()
		if _, err := s.Store.UpdateConversation(ctx, &store.UpdateConversation{
			ID:        conv.ID,
			Summary:   &result.Summary,
			UpdatedTs: &doneTs,
		}); err != nil {
			slog.Error("failed to persist summary", slog.String("error", err.Error()))
		}
	}

	if err := s.BillingService.RecordUsage(ctx, user, result.TokensIn+result.TokensOut, result.CostCents, now); err != nil {
		slog.Error("failed to record usage", slog.String("error", err.Error()))
	}

	done := map[string]string{
		"messageId": assistantMsg.UID,
		"modelUsed": result.ModelName,
	}
	if announceConversation {
		done["conversationId"] = conv.UID
	}
	writeSSE(resp, "done", done)
	return nil
}

// writeSSE emits one named server-sent event and flushes it to the client.
func writeSSE(resp *echo.Response, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal sse payload", slog.String("error", err.Error()))
		return
	}
	fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data)
	resp.Flush()
}
