package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/openclaw/assistant/store"
)

func (d *DB) IncrementUsage(ctx context.Context, increment *store.IncrementUsage) (*store.Usage, error) {
	fields := []string{"user_id", "period_start_ts", "period_end_ts", "messages_count", "tokens_used", "cost_cents", "tier"}
	args := []any{increment.UserID, increment.PeriodStartTs, increment.PeriodEndTs, increment.Messages, increment.Tokens, increment.CostCents, string(increment.Tier)}

	stmt := `INSERT INTO usage (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT (user_id, period_start_ts) DO UPDATE SET
			messages_count = usage.messages_count + EXCLUDED.messages_count,
			tokens_used = usage.tokens_used + EXCLUDED.tokens_used,
			cost_cents = usage.cost_cents + EXCLUDED.cost_cents,
			tier = EXCLUDED.tier
		RETURNING id, user_id, period_start_ts, period_end_ts, messages_count, tokens_used, cost_cents, tier`
	result := &store.Usage{}
	var tier string
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&result.ID, &result.UserID, &result.PeriodStartTs, &result.PeriodEndTs, &result.MessagesCount, &result.TokensUsed, &result.CostCents, &tier,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment usage: %w", err)
	}
	result.Tier = store.Tier(tier)

	return result, nil
}

func (d *DB) ListUsage(ctx context.Context, find *store.FindUsage) ([]*store.Usage, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}
	if find.PeriodStartTs != nil {
		where, args = append(where, "period_start_ts = "+placeholder(len(args)+1)), append(args, *find.PeriodStartTs)
	}

	query := `SELECT id, user_id, period_start_ts, period_end_ts, messages_count, tokens_used, cost_cents, tier FROM usage WHERE ` + strings.Join(where, " AND ") + ` ORDER BY period_start_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list usage: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Usage, 0)
	for rows.Next() {
		u := &store.Usage{}
		var tier string
		if err := rows.Scan(&u.ID, &u.UserID, &u.PeriodStartTs, &u.PeriodEndTs, &u.MessagesCount, &u.TokensUsed, &u.CostCents, &tier); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		u.Tier = store.Tier(tier)
		list = append(list, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate usage: %w", err)
	}

	return list, nil
}
