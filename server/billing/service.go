package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openclaw/assistant/store"
)

// Service answers quota questions and records usage. It owns the billing
// period arithmetic; everything it persists goes through the store.
type Service struct {
	store *store.Store
}

func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// Status is the per-user billing snapshot served to clients and consumed by
// the quota check.
type Status struct {
	Tier              store.Tier
	Status            store.SubscriptionStatus
	MessagesUsed      int32
	MessagesLimit     int32
	MessagesRemaining int32
	PeriodStartTs     int64
	PeriodEndTs       int64
	CancelAtPeriodEnd bool
	DaysRemaining     int
}

// QuotaDecision is the pre-checked "allowed to proceed" answer the chat
// transport consults before orchestrating. Reason is user-facing when
// Allowed is false.
type QuotaDecision struct {
	Allowed bool
	Reason  string
}

// Status computes the user's current billing snapshot.
func (s *Service) Status(ctx context.Context, user *store.User, now time.Time) (*Status, error) {
	sub, err := s.store.GetSubscription(ctx, &store.FindSubscription{UserID: &user.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	tier := user.Tier
	status := store.SubscriptionStatusTrialing
	cancelAtPeriodEnd := false
	periodStart, periodEnd := trialPeriod(user, now)
	if sub != nil {
		tier = sub.Tier
		status = sub.Status
		cancelAtPeriodEnd = sub.CancelAtPeriodEnd
		periodStart, periodEnd = sub.PeriodStartTs, sub.PeriodEndTs
	}

	limits := LimitsFor(tier)
	used := int32(0)
	usage, err := s.store.GetUsage(ctx, &store.FindUsage{UserID: &user.ID, PeriodStartTs: &periodStart})
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}
	if usage != nil {
		used = usage.MessagesCount
	}

	remaining := limits.MessagesPerPeriod - used
	if remaining < 0 {
		remaining = 0
	}

	// For subscribers DaysRemaining counts to the period end; for trial
	// accounts it counts down the trial itself.
	deadline := time.Unix(periodEnd, 0)
	if sub == nil {
		deadline = time.Unix(user.CreatedTs, 0).AddDate(0, 0, TrialDays)
	}
	daysRemaining := int(deadline.Sub(now).Hours() / 24)

	return &Status{
		Tier:              tier,
		Status:            status,
		MessagesUsed:      used,
		MessagesLimit:     limits.MessagesPerPeriod,
		MessagesRemaining: remaining,
		PeriodStartTs:     periodStart,
		PeriodEndTs:       periodEnd,
		CancelAtPeriodEnd: cancelAtPeriodEnd,
		DaysRemaining:     daysRemaining,
	}, nil
}

// CheckQuota decides whether the user may send another message right now.
func (s *Service) CheckQuota(ctx context.Context, user *store.User, now time.Time) (*QuotaDecision, error) {
	status, err := s.Status(ctx, user, now)
	if err != nil {
		return nil, err
	}

	if status.Status == store.SubscriptionStatusCanceled {
		return &QuotaDecision{
			Allowed: false,
			Reason:  "Your subscription has been canceled. Subscribe again to continue using the assistant.",
		}, nil
	}

	if status.Status == store.SubscriptionStatusPastDue {
		return &QuotaDecision{
			Allowed: false,
			Reason:  "Your payment is past due. Please update your payment method to continue.",
		}, nil
	}

	if status.Tier == store.TierTrial && status.DaysRemaining <= 0 {
		return &QuotaDecision{
			Allowed: false,
			Reason: fmt.Sprintf("Your %d-day free trial has ended. Subscribe to continue: Solo $39/month, Pro $79/month, Business $149/month.",
				TrialDays),
		}, nil
	}

	if status.MessagesRemaining <= 0 {
		reason := fmt.Sprintf("You've reached your %d message limit for this period.", status.MessagesLimit)
		if next, ok := NextTier(status.Tier); ok {
			reason = fmt.Sprintf("%s Upgrade to %s for %d messages per month.",
				reason, next, LimitsFor(next).MessagesPerPeriod)
		}
		return &QuotaDecision{Allowed: false, Reason: reason}, nil
	}

	return &QuotaDecision{Allowed: true}, nil
}

// RecordUsage adds one finished assistant message to the user's counters for
// the current period. Called once per orchestration, after persistence.
func (s *Service) RecordUsage(ctx context.Context, user *store.User, tokens int, costCents int32, now time.Time) error {
	sub, err := s.store.GetSubscription(ctx, &store.FindSubscription{UserID: &user.ID})
	if err != nil {
		return fmt.Errorf("failed to load subscription: %w", err)
	}

	tier := user.Tier
	periodStart, periodEnd := trialPeriod(user, now)
	if sub != nil {
		tier = sub.Tier
		periodStart, periodEnd = sub.PeriodStartTs, sub.PeriodEndTs
	}

	if _, err := s.store.IncrementUsage(ctx, &store.IncrementUsage{
		UserID:        user.ID,
		PeriodStartTs: periodStart,
		PeriodEndTs:   periodEnd,
		Messages:      1,
		Tokens:        int32(tokens),
		CostCents:     costCents,
		Tier:          tier,
	}); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}

	slog.Debug("usage recorded",
		slog.Int("user_id", int(user.ID)),
		slog.Int("tokens", tokens),
		slog.Int("cost_cents", int(costCents)))
	return nil
}

// RetentionCutoffTs returns the oldest message timestamp the tier may load
// into context, per its memory window.
func RetentionCutoffTs(tier store.Tier, now time.Time) int64 {
	limits := LimitsFor(tier)
	return now.AddDate(0, 0, -limits.MemoryDays).Unix()
}

// trialPeriod returns the rolling usage period for accounts without a
// subscription, anchored at account creation so period starts are stable.
func trialPeriod(user *store.User, now time.Time) (int64, int64) {
	periodSeconds := int64(PeriodDays * 24 * 60 * 60)
	elapsed := now.Unix() - user.CreatedTs
	if elapsed < 0 {
		elapsed = 0
	}
	index := elapsed / periodSeconds
	start := user.CreatedTs + index*periodSeconds
	return start, start + periodSeconds
}
