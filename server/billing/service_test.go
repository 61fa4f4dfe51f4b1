package billing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openclaw/assistant/store"
	storetest "github.com/openclaw/assistant/store/test"
)

func createUser(ctx context.Context, t *testing.T, st *store.Store, tier store.Tier, createdAt time.Time) *store.User {
	user, err := st.CreateUser(ctx, &store.User{
		Email:     string(tier) + "@example.com",
		Name:      "Test User",
		Tier:      tier,
		CreatedTs: createdAt.Unix(),
		UpdatedTs: createdAt.Unix(),
	})
	require.NoError(t, err)
	return user
}

func activateSubscription(ctx context.Context, t *testing.T, st *store.Store, user *store.User, tier store.Tier, status store.SubscriptionStatus, now time.Time) *store.Subscription {
	sub, err := st.UpsertSubscription(ctx, &store.Subscription{
		UserID:        user.ID,
		ExternalID:    "sub_" + user.Email,
		CustomerID:    "cus_" + user.Email,
		Tier:          tier,
		Status:        status,
		PeriodStartTs: now.Unix(),
		PeriodEndTs:   now.AddDate(0, 1, 0).Unix(),
		CreatedTs:     now.Unix(),
		UpdatedTs:     now.Unix(),
	})
	require.NoError(t, err)
	return sub
}

func TestCheckQuota_TrialAllowed(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewTestingStore(ctx, t)
	svc := NewService(st)

	now := time.Now()
	user := createUser(ctx, t, st, store.TierTrial, now.AddDate(0, 0, -2))

	decision, err := svc.CheckQuota(ctx, user, now)
	require.NoError(t, err)
	require.True(t, decision.Allowed)
}

func TestCheckQuota_TrialExpired(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewTestingStore(ctx, t)
	svc := NewService(st)

	now := time.Now()
	user := createUser(ctx, t, st, store.TierTrial, now.AddDate(0, 0, -TrialDays-1))

	decision, err := svc.CheckQuota(ctx, user, now)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.Reason, "trial has ended")
}

func TestCheckQuota_CanceledSubscription(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewTestingStore(ctx, t)
	svc := NewService(st)

	now := time.Now()
	user := createUser(ctx, t, st, store.TierPro, now.AddDate(0, -2, 0))
	activateSubscription(ctx, t, st, user, store.TierPro, store.SubscriptionStatusCanceled, now)

	decision, err := svc.CheckQuota(ctx, user, now)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.Reason, "canceled")
}

func TestCheckQuota_PastDue(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewTestingStore(ctx, t)
	svc := NewService(st)

	now := time.Now()
	user := createUser(ctx, t, st, store.TierSolo, now.AddDate(0, -2, 0))
	activateSubscription(ctx, t, st, user, store.TierSolo, store.SubscriptionStatusPastDue, now)

	decision, err := svc.CheckQuota(ctx, user, now)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.Reason, "past due")
}

func TestCheckQuota_OverQuota(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewTestingStore(ctx, t)
	svc := NewService(st)

	now := time.Now()
	user := createUser(ctx, t, st, store.TierSolo, now.AddDate(0, -2, 0))
	sub := activateSubscription(ctx, t, st, user, store.TierSolo, store.SubscriptionStatusActive, now)

	_, err := st.IncrementUsage(ctx, &store.IncrementUsage{
		UserID:        user.ID,
		PeriodStartTs: sub.PeriodStartTs,
		PeriodEndTs:   sub.PeriodEndTs,
		Messages:      LimitsFor(store.TierSolo).MessagesPerPeriod,
		Tier:          store.TierSolo,
	})
	require.NoError(t, err)

	decision, err := svc.CheckQuota(ctx, user, now)
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.Contains(t, decision.Reason, "1000 message limit")
	require.True(t, strings.Contains(decision.Reason, "Upgrade to pro"), "expected an upgrade hint, got %q", decision.Reason)
}

func TestRecordUsage_AccumulatesInPeriod(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewTestingStore(ctx, t)
	svc := NewService(st)

	now := time.Now()
	user := createUser(ctx, t, st, store.TierPro, now.AddDate(0, -1, 0))
	sub := activateSubscription(ctx, t, st, user, store.TierPro, store.SubscriptionStatusActive, now)

	require.NoError(t, svc.RecordUsage(ctx, user, 150, 2, now))
	require.NoError(t, svc.RecordUsage(ctx, user, 50, 1, now))

	usage, err := st.GetUsage(ctx, &store.FindUsage{UserID: &user.ID, PeriodStartTs: &sub.PeriodStartTs})
	require.NoError(t, err)
	require.NotNil(t, usage)
	require.Equal(t, int32(2), usage.MessagesCount)
	require.Equal(t, int32(200), usage.TokensUsed)
	require.Equal(t, int32(3), usage.CostCents)

	status, err := svc.Status(ctx, user, now)
	require.NoError(t, err)
	require.Equal(t, int32(2), status.MessagesUsed)
	require.Equal(t, LimitsFor(store.TierPro).MessagesPerPeriod-2, status.MessagesRemaining)
}

func TestRetentionCutoffTs(t *testing.T) {
	now := time.Now()
	cutoff := RetentionCutoffTs(store.TierSolo, now)
	want := now.AddDate(0, 0, -7).Unix()
	if cutoff != want {
		t.Errorf("solo retention cutoff = %d, want %d", cutoff, want)
	}
}
