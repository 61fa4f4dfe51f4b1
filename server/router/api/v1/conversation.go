package v1

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/openclaw/assistant/store"
)

// titleMaxLen bounds auto-generated conversation titles.
const titleMaxLen = 50

type conversationResponse struct {
	UID       string `json:"uid"`
	Title     string `json:"title"`
	CreatedTs int64  `json:"createdTs"`
	UpdatedTs int64  `json:"updatedTs"`
}

type messageResponse struct {
	UID       string            `json:"uid"`
	Role      store.MessageRole `json:"role"`
	Content   string            `json:"content"`
	Model     *string           `json:"model,omitempty"`
	CreatedTs int64             `json:"createdTs"`
}

type conversationDetailResponse struct {
	Conversation *conversationResponse `json:"conversation"`
	Messages     []*messageResponse    `json:"messages"`
}

func toConversationResponse(conv *store.Conversation) *conversationResponse {
	return &conversationResponse{
		UID:       conv.UID,
		Title:     conv.Title,
		CreatedTs: conv.CreatedTs,
		UpdatedTs: conv.UpdatedTs,
	}
}

func toMessageResponse(msg *store.Message) *messageResponse {
	return &messageResponse{
		UID:       msg.UID,
		Role:      msg.Role,
		Content:   msg.Content,
		Model:     msg.Model,
		CreatedTs: msg.CreatedTs,
	}
}

// ListConversations returns the user's conversations, most recently updated
// first.
func (s *APIV1Service) ListConversations(c echo.Context) error {
	user := currentUser(c)
	conversations, err := s.Store.ListConversations(c.Request().Context(), &store.FindConversation{UserID: &user.ID})
	if err != nil {
		slog.Error("failed to list conversations", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list conversations")
	}

	resp := make([]*conversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		resp = append(resp, toConversationResponse(conv))
	}
	return c.JSON(http.StatusOK, resp)
}

type createConversationRequest struct {
	Title string `json:"title"`
}

func (s *APIV1Service) CreateConversation(c echo.Context) error {
	user := currentUser(c)
	req := &createConversationRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	now := time.Now().Unix()
	conv, err := s.Store.CreateConversation(c.Request().Context(), &store.Conversation{
		UID:       shortuuid.New(),
		UserID:    user.ID,
		Title:     truncateTitle(req.Title),
		Context:   "{}",
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		slog.Error("failed to create conversation", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create conversation")
	}
	return c.JSON(http.StatusCreated, toConversationResponse(conv))
}

func (s *APIV1Service) GetConversation(c echo.Context) error {
	user := currentUser(c)
	conv, err := s.findOwnedConversation(c, user)
	if err != nil {
		return err
	}

	messages, err := s.Store.ListMessages(c.Request().Context(), &store.FindMessage{ConversationID: &conv.ID})
	if err != nil {
		slog.Error("failed to list messages", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load conversation")
	}

	resp := &conversationDetailResponse{
		Conversation: toConversationResponse(conv),
		Messages:     make([]*messageResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, toMessageResponse(msg))
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteConversation removes the conversation; messages cascade with it.
func (s *APIV1Service) DeleteConversation(c echo.Context) error {
	user := currentUser(c)
	conv, err := s.findOwnedConversation(c, user)
	if err != nil {
		return err
	}

	if err := s.Store.DeleteConversation(c.Request().Context(), &store.DeleteConversation{ID: conv.ID}); err != nil {
		slog.Error("failed to delete conversation", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete conversation")
	}
	return c.NoContent(http.StatusNoContent)
}

// findOwnedConversation loads the conversation from the :uid param and
// enforces ownership. Foreign conversations read as 404, never 403.
func (s *APIV1Service) findOwnedConversation(c echo.Context, user *store.User) (*store.Conversation, error) {
	uid := c.Param("uid")
	conv, err := s.Store.GetConversation(c.Request().Context(), &store.FindConversation{UID: &uid})
	if err != nil {
		slog.Error("failed to get conversation", slog.String("error", err.Error()))
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "failed to load conversation")
	}
	if conv == nil || conv.UserID != user.ID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	return conv, nil
}

func truncateTitle(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen])
	}
	return string(runes)
}
