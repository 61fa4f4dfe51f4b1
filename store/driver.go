package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	DeleteUser(ctx context.Context, delete *DeleteUser) error

	// Session model related methods.
	CreateSession(ctx context.Context, create *Session) (*Session, error)
	ListSessions(ctx context.Context, find *FindSession) ([]*Session, error)
	DeleteSession(ctx context.Context, delete *DeleteSession) error
	DeleteExpiredSessions(ctx context.Context, nowTs int64) error

	// Conversation model related methods.
	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error)
	DeleteConversation(ctx context.Context, delete *DeleteConversation) error

	// Message model related methods. Messages are append-only.
	CreateMessage(ctx context.Context, create *Message) (*Message, error)
	ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error)

	// Subscription model related methods.
	UpsertSubscription(ctx context.Context, upsert *Subscription) (*Subscription, error)
	ListSubscriptions(ctx context.Context, find *FindSubscription) ([]*Subscription, error)
	DeleteSubscription(ctx context.Context, delete *DeleteSubscription) error

	// Usage model related methods.
	IncrementUsage(ctx context.Context, increment *IncrementUsage) (*Usage, error)
	ListUsage(ctx context.Context, find *FindUsage) ([]*Usage, error)
}
