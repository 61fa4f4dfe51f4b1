package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/openclaw/assistant/store"
)

func (d *DB) CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error) {
	fields := []string{"uid", "conversation_id", "role", "content", "channel", "model", "tokens_in", "tokens_out", "cost_cents", "cached", "created_ts"}
	args := []any{create.UID, create.ConversationID, string(create.Role), create.Content, string(create.Channel), create.Model, create.TokensIn, create.TokensOut, create.CostCents, create.Cached, create.CreatedTs}

	stmt := `INSERT INTO messages (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return create, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = "+placeholder(len(args)+1)), append(args, *find.ConversationID)
	}
	if find.CreatedAfterTs != nil {
		where, args = append(where, "created_ts > "+placeholder(len(args)+1)), append(args, *find.CreatedAfterTs)
	}

	query := `SELECT id, uid, conversation_id, role, content, channel, model, tokens_in, tokens_out, cost_cents, cached, created_ts FROM messages WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts ASC, id ASC`
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Message, 0)
	for rows.Next() {
		m := &store.Message{}
		var role, channel string
		if err := rows.Scan(&m.ID, &m.UID, &m.ConversationID, &role, &m.Content, &channel, &m.Model, &m.TokensIn, &m.TokensOut, &m.CostCents, &m.Cached, &m.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = store.MessageRole(role)
		m.Channel = store.Channel(channel)
		list = append(list, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return list, nil
}
