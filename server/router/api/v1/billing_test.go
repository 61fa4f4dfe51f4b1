package v1

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openclaw/assistant/store"
)

func webhookSign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestBillingStatusEndpoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(ctx, t, nil)
	_, token := env.signIn(ctx, t, "ada@example.com", store.TierTrial, time.Now())

	rec := env.request(http.MethodGet, "/api/v1/billing/status", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	status := &billingStatusResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), status))
	require.Equal(t, store.TierTrial, status.Tier)
	require.Equal(t, int32(50), status.MessagesLimit)
	require.Equal(t, int32(50), status.MessagesRemaining)
}

func TestBillingWebhookEndpoint(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(ctx, t, nil)
	user, _ := env.signIn(ctx, t, "ada@example.com", store.TierTrial, time.Now())

	now := time.Now()
	body := fmt.Sprintf(`{
		"type": "subscription.created",
		"subscription": {
			"external_id": "sub_1",
			"customer_id": "cus_1",
			"user_id": %d,
			"tier": "pro",
			"status": "active",
			"period_start_ts": %d,
			"period_end_ts": %d
		}
	}`, user.ID, now.Unix(), now.AddDate(0, 1, 0).Unix())

	// An unsigned or missigned request is rejected before any parsing.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/billing/webhook", strings.NewReader(body))
	req.Header.Set(webhookSignatureHeader, webhookSign("hook-secret", body))
	rec = httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	refreshed, err := env.store.GetUser(ctx, &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	require.Equal(t, store.TierPro, refreshed.Tier)
}
