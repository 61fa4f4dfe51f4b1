package store

import (
	"context"
	"fmt"
	"time"

	"github.com/openclaw/assistant/internal/profile"
	"github.com/openclaw/assistant/store/cache"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// userCache fronts user lookups on the hot auth path.
	userCache *cache.Cache
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	cacheConfig := cache.Config{
		DefaultTTL:      10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
		MaxItems:        1000,
	}

	return &Store{
		driver:    driver,
		profile:   profile,
		userCache: cache.New(cacheConfig),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	s.userCache.Close()
	return s.driver.Close()
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns the first matching user or nil when not found.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.Email == nil && find.GoogleID == nil {
		if v, ok := s.userCache.Get(userCacheKey(*find.ID)); ok {
			return v.(*User), nil
		}
	}

	users, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	user := users[0]
	s.userCache.Set(userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(userCacheKey(user.ID), user)
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, delete *DeleteUser) error {
	if err := s.driver.DeleteUser(ctx, delete); err != nil {
		return err
	}
	s.userCache.Delete(userCacheKey(delete.ID))
	return nil
}

func (s *Store) CreateSession(ctx context.Context, create *Session) (*Session, error) {
	return s.driver.CreateSession(ctx, create)
}

// GetSession returns the first matching session or nil when not found.
func (s *Store) GetSession(ctx context.Context, find *FindSession) (*Session, error) {
	sessions, err := s.driver.ListSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return sessions[0], nil
}

func (s *Store) DeleteSession(ctx context.Context, delete *DeleteSession) error {
	return s.driver.DeleteSession(ctx, delete)
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, nowTs int64) error {
	return s.driver.DeleteExpiredSessions(ctx, nowTs)
}

func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	return s.driver.CreateConversation(ctx, create)
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

// GetConversation returns the first matching conversation or nil when not found.
func (s *Store) GetConversation(ctx context.Context, find *FindConversation) (*Conversation, error) {
	conversations, err := s.driver.ListConversations(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(conversations) == 0 {
		return nil, nil
	}
	return conversations[0], nil
}

func (s *Store) UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error) {
	return s.driver.UpdateConversation(ctx, update)
}

func (s *Store) DeleteConversation(ctx context.Context, delete *DeleteConversation) error {
	return s.driver.DeleteConversation(ctx, delete)
}

func (s *Store) CreateMessage(ctx context.Context, create *Message) (*Message, error) {
	return s.driver.CreateMessage(ctx, create)
}

func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}

func (s *Store) UpsertSubscription(ctx context.Context, upsert *Subscription) (*Subscription, error) {
	return s.driver.UpsertSubscription(ctx, upsert)
}

// GetSubscription returns the first matching subscription or nil when not found.
func (s *Store) GetSubscription(ctx context.Context, find *FindSubscription) (*Subscription, error) {
	subscriptions, err := s.driver.ListSubscriptions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(subscriptions) == 0 {
		return nil, nil
	}
	return subscriptions[0], nil
}

func (s *Store) DeleteSubscription(ctx context.Context, delete *DeleteSubscription) error {
	return s.driver.DeleteSubscription(ctx, delete)
}

func (s *Store) IncrementUsage(ctx context.Context, increment *IncrementUsage) (*Usage, error) {
	return s.driver.IncrementUsage(ctx, increment)
}

func (s *Store) ListUsage(ctx context.Context, find *FindUsage) ([]*Usage, error) {
	return s.driver.ListUsage(ctx, find)
}

// GetUsage returns the first matching usage row or nil when not found.
func (s *Store) GetUsage(ctx context.Context, find *FindUsage) (*Usage, error) {
	rows, err := s.driver.ListUsage(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user:%d", id)
}
