package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openclaw/assistant/store"
)

func TestConversationCRUD(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(ctx, t, nil)
	_, token := env.signIn(ctx, t, "ada@example.com", store.TierTrial, time.Now())

	rec := env.request(http.MethodPost, "/api/v1/conversations", token, `{"title":"Planning"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := &conversationResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), created))
	require.NotEmpty(t, created.UID)
	require.Equal(t, "Planning", created.Title)

	rec = env.request(http.MethodGet, "/api/v1/conversations", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []*conversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	rec = env.request(http.MethodGet, "/api/v1/conversations/"+created.UID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := &conversationDetailResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), detail))
	require.Equal(t, created.UID, detail.Conversation.UID)
	require.Empty(t, detail.Messages)

	rec = env.request(http.MethodDelete, "/api/v1/conversations/"+created.UID, token, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.request(http.MethodGet, "/api/v1/conversations/"+created.UID, token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConversationOwnership(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(ctx, t, nil)
	_, ownerToken := env.signIn(ctx, t, "ada@example.com", store.TierTrial, time.Now())
	_, otherToken := env.signIn(ctx, t, "eve@example.com", store.TierTrial, time.Now())

	rec := env.request(http.MethodPost, "/api/v1/conversations", ownerToken, `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := &conversationResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), created))

	// A foreign conversation reads as 404, never 403.
	rec = env.request(http.MethodGet, "/api/v1/conversations/"+created.UID, otherToken, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.request(http.MethodDelete, "/api/v1/conversations/"+created.UID, otherToken, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	// And it is still there for its owner.
	rec = env.request(http.MethodGet, "/api/v1/conversations/"+created.UID, ownerToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTruncateTitle(t *testing.T) {
	long := "This message is quite a bit longer than fifty characters in total."
	require.Len(t, []rune(truncateTitle(long)), 50)
	require.Equal(t, "short", truncateTitle("  short  "))
}
