package v1

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openclaw/assistant/server/billing"
	"github.com/openclaw/assistant/store"
)

// webhookSignatureHeader carries the hex HMAC of the raw request body.
const webhookSignatureHeader = "X-Webhook-Signature"

type billingStatusResponse struct {
	Tier              store.Tier               `json:"tier"`
	Status            store.SubscriptionStatus `json:"status"`
	MessagesUsed      int32                    `json:"messagesUsed"`
	MessagesLimit     int32                    `json:"messagesLimit"`
	MessagesRemaining int32                    `json:"messagesRemaining"`
	PeriodStartTs     int64                    `json:"periodStartTs"`
	PeriodEndTs       int64                    `json:"periodEndTs"`
	CancelAtPeriodEnd bool                     `json:"cancelAtPeriodEnd"`
	DaysRemaining     int                      `json:"daysRemaining"`
}

// BillingStatus returns the user's tier, quota usage and period boundaries.
func (s *APIV1Service) BillingStatus(c echo.Context) error {
	user := currentUser(c)
	status, err := s.BillingService.Status(c.Request().Context(), user, time.Now())
	if err != nil {
		slog.Error("failed to compute billing status", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load billing status")
	}

	return c.JSON(http.StatusOK, &billingStatusResponse{
		Tier:              status.Tier,
		Status:            status.Status,
		MessagesUsed:      status.MessagesUsed,
		MessagesLimit:     status.MessagesLimit,
		MessagesRemaining: status.MessagesRemaining,
		PeriodStartTs:     status.PeriodStartTs,
		PeriodEndTs:       status.PeriodEndTs,
		CancelAtPeriodEnd: status.CancelAtPeriodEnd,
		DaysRemaining:     status.DaysRemaining,
	})
}

// BillingWebhook applies subscription lifecycle events pushed by the payment
// processor. The payload is authenticated with a shared-secret HMAC over the
// raw body, so the body must be read before any decoding.
func (s *APIV1Service) BillingWebhook(c echo.Context) error {
	if s.Profile.BillingWebhookSecret == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "billing webhook is not configured")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	signature := c.Request().Header.Get(webhookSignatureHeader)
	if !billing.VerifyWebhookSignature(s.Profile.BillingWebhookSecret, body, signature) {
		slog.Warn("webhook signature rejected")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook signature")
	}

	event := &billing.WebhookEvent{}
	if err := json.Unmarshal(body, event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid webhook payload")
	}

	if err := s.BillingService.ApplyWebhookEvent(c.Request().Context(), event, time.Now()); err != nil {
		slog.Error("failed to apply webhook event",
			slog.String("type", event.Type),
			slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to apply webhook event")
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
