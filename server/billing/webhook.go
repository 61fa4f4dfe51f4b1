package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/openclaw/assistant/store"
)

// Webhook event types emitted by the payment processor. The processor is
// treated as opaque; only these events drive local state.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionUpdated = "subscription.updated"
	EventSubscriptionDeleted = "subscription.deleted"
	EventPaymentFailed       = "invoice.payment_failed"
)

// WebhookEvent is the processor's notification payload.
type WebhookEvent struct {
	Type         string               `json:"type"`
	Subscription *WebhookSubscription `json:"subscription"`
}

// WebhookSubscription mirrors the processor-side subscription object.
type WebhookSubscription struct {
	ExternalID        string                   `json:"external_id"`
	CustomerID        string                   `json:"customer_id"`
	UserID            int32                    `json:"user_id"`
	Tier              store.Tier               `json:"tier"`
	Status            store.SubscriptionStatus `json:"status"`
	PeriodStartTs     int64                    `json:"period_start_ts"`
	PeriodEndTs       int64                    `json:"period_end_ts"`
	CancelAtPeriodEnd bool                     `json:"cancel_at_period_end"`
}

// VerifyWebhookSignature checks the hex HMAC-SHA256 of the raw body against
// the shared webhook secret.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// ApplyWebhookEvent folds one processor event into local subscription state.
// Events are idempotent: replaying an event converges on the same rows.
func (s *Service) ApplyWebhookEvent(ctx context.Context, event *WebhookEvent, now time.Time) error {
	if event.Subscription == nil {
		return fmt.Errorf("webhook event %q carries no subscription", event.Type)
	}
	sub := event.Subscription

	slog.Info("billing webhook received",
		slog.String("type", event.Type),
		slog.String("external_id", sub.ExternalID))

	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated:
		if !sub.Tier.IsValid() {
			return fmt.Errorf("unknown tier %q in webhook event", sub.Tier)
		}
		if _, err := s.store.UpsertSubscription(ctx, &store.Subscription{
			UserID:            sub.UserID,
			ExternalID:        sub.ExternalID,
			CustomerID:        sub.CustomerID,
			Tier:              sub.Tier,
			Status:            sub.Status,
			PeriodStartTs:     sub.PeriodStartTs,
			PeriodEndTs:       sub.PeriodEndTs,
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
			CreatedTs:         now.Unix(),
			UpdatedTs:         now.Unix(),
		}); err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}
		return s.setUserTier(ctx, sub.UserID, sub.Tier, now)

	case EventSubscriptionDeleted:
		existing, err := s.store.GetSubscription(ctx, &store.FindSubscription{ExternalID: &sub.ExternalID})
		if err != nil {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		if existing == nil {
			return nil
		}
		existing.Status = store.SubscriptionStatusCanceled
		existing.UpdatedTs = now.Unix()
		if _, err := s.store.UpsertSubscription(ctx, existing); err != nil {
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}
		return s.setUserTier(ctx, existing.UserID, store.TierTrial, now)

	case EventPaymentFailed:
		existing, err := s.store.GetSubscription(ctx, &store.FindSubscription{ExternalID: &sub.ExternalID})
		if err != nil {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		if existing == nil {
			return nil
		}
		existing.Status = store.SubscriptionStatusPastDue
		existing.UpdatedTs = now.Unix()
		if _, err := s.store.UpsertSubscription(ctx, existing); err != nil {
			return fmt.Errorf("failed to mark subscription past due: %w", err)
		}
		return nil

	default:
		// Unknown events are acknowledged and dropped.
		slog.Debug("ignoring webhook event", slog.String("type", event.Type))
		return nil
	}
}

func (s *Service) setUserTier(ctx context.Context, userID int32, tier store.Tier, now time.Time) error {
	nowTs := now.Unix()
	if _, err := s.store.UpdateUser(ctx, &store.UpdateUser{
		ID:        userID,
		Tier:      &tier,
		UpdatedTs: &nowTs,
	}); err != nil {
		return fmt.Errorf("failed to update user tier: %w", err)
	}
	return nil
}
