package store

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

type Channel string

const (
	ChannelWeb      Channel = "web"
	ChannelTelegram Channel = "telegram"
	ChannelSlack    Channel = "slack"
	ChannelDiscord  Channel = "discord"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelAPI      Channel = "api"
)

// Message is one turn in a conversation. Rows are immutable once created and
// cascade-deleted with their conversation. Model/token/cost fields are only
// set for assistant turns.
type Message struct {
	ID             int32
	UID            string
	ConversationID int32
	Role           MessageRole
	Content        string
	Channel        Channel
	Model          *string
	TokensIn       *int32
	TokensOut      *int32
	CostCents      *int32
	// Cached is reserved for a future semantic cache; always false today.
	Cached    bool
	CreatedTs int64
}

type FindMessage struct {
	ConversationID *int32
	// CreatedAfterTs bounds history loading to the tier's retention window.
	CreatedAfterTs *int64
	Limit          *int
}
