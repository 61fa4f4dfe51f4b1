package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/openclaw/assistant/store"
)

func (d *DB) UpsertSubscription(ctx context.Context, upsert *store.Subscription) (*store.Subscription, error) {
	fields := []string{"user_id", "external_id", "customer_id", "tier", "status", "period_start_ts", "period_end_ts", "cancel_at_period_end", "created_ts", "updated_ts"}
	args := []any{upsert.UserID, upsert.ExternalID, upsert.CustomerID, string(upsert.Tier), string(upsert.Status), upsert.PeriodStartTs, upsert.PeriodEndTs, upsert.CancelAtPeriodEnd, upsert.CreatedTs, upsert.UpdatedTs}

	stmt := `INSERT INTO subscriptions (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT (user_id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			customer_id = EXCLUDED.customer_id,
			tier = EXCLUDED.tier,
			status = EXCLUDED.status,
			period_start_ts = EXCLUDED.period_start_ts,
			period_end_ts = EXCLUDED.period_end_ts,
			cancel_at_period_end = EXCLUDED.cancel_at_period_end,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&upsert.ID); err != nil {
		return nil, fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListSubscriptions(ctx context.Context, find *store.FindSubscription) ([]*store.Subscription, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}
	if find.ExternalID != nil {
		where, args = append(where, "external_id = "+placeholder(len(args)+1)), append(args, *find.ExternalID)
	}

	query := `SELECT id, user_id, external_id, customer_id, tier, status, period_start_ts, period_end_ts, cancel_at_period_end, created_ts, updated_ts FROM subscriptions WHERE ` + strings.Join(where, " AND ") + ` ORDER BY updated_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Subscription, 0)
	for rows.Next() {
		s := &store.Subscription{}
		var tier, status string
		if err := rows.Scan(&s.ID, &s.UserID, &s.ExternalID, &s.CustomerID, &tier, &status, &s.PeriodStartTs, &s.PeriodEndTs, &s.CancelAtPeriodEnd, &s.CreatedTs, &s.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		s.Tier = store.Tier(tier)
		s.Status = store.SubscriptionStatus(status)
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteSubscription(ctx context.Context, delete *store.DeleteSubscription) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE external_id = `+placeholder(1), delete.ExternalID); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
