package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openclaw/assistant/store"
	storetest "github.com/openclaw/assistant/store/test"
)

func newTestService(ctx context.Context, t *testing.T) (*Service, *store.Store) {
	st := storetest.NewTestingStore(ctx, t)
	return NewService(st, "test-secret"), st
}

func createUser(ctx context.Context, t *testing.T, st *store.Store) *store.User {
	now := time.Now().Unix()
	user, err := st.CreateUser(ctx, &store.User{
		Email:     "ada@example.com",
		Name:      "Ada",
		GoogleID:  "google-sub-1",
		Tier:      store.TierTrial,
		CreatedTs: now,
		UpdatedTs: now,
	})
	require.NoError(t, err)
	return user
}

func TestIssueAndValidateSession(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(ctx, t)
	user := createUser(ctx, t, st)

	now := time.Now()
	token, session, err := svc.IssueSession(ctx, user, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, session.UserID)
	require.Equal(t, now.Add(SessionDuration).Unix(), session.ExpiresTs)

	got, gotSession, err := svc.ValidateSession(ctx, token, now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, session.ID, gotSession.ID)
}

func TestValidateSession_Revoked(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(ctx, t)
	user := createUser(ctx, t, st)

	now := time.Now()
	token, session, err := svc.IssueSession(ctx, user, now)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSession(ctx, session.ID))

	got, _, err := svc.ValidateSession(ctx, token, now)
	require.NoError(t, err)
	require.Nil(t, got, "revoked session must not validate")
}

func TestValidateSession_Expired(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(ctx, t)
	user := createUser(ctx, t, st)

	now := time.Now()
	token, session, err := svc.IssueSession(ctx, user, now)
	require.NoError(t, err)

	got, _, err := svc.ValidateSession(ctx, token, now.Add(SessionDuration+time.Minute))
	require.NoError(t, err)
	require.Nil(t, got)

	// Expired validation also removed the row.
	row, err := st.GetSession(ctx, &store.FindSession{ID: &session.ID})
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestValidateSession_Tampered(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(ctx, t)
	user := createUser(ctx, t, st)

	now := time.Now()
	token, _, err := svc.IssueSession(ctx, user, now)
	require.NoError(t, err)

	other := NewService(st, "different-secret")
	got, _, err := other.ValidateSession(ctx, token, now)
	require.NoError(t, err)
	require.Nil(t, got, "token signed with another secret must not validate")

	got, _, err = svc.ValidateSession(ctx, token+"x", now)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpsertGoogleUser(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(ctx, t)

	now := time.Now()
	info := &GoogleUserInfo{
		Sub:           "sub-42",
		Email:         "grace@example.com",
		Name:          "Grace",
		EmailVerified: true,
	}

	created, err := svc.UpsertGoogleUser(ctx, info, now)
	require.NoError(t, err)
	require.Equal(t, store.TierTrial, created.Tier)
	require.Equal(t, "sub-42", created.GoogleID)

	// A second login with a changed display name updates, never duplicates.
	info.Name = "Grace H."
	again, err := svc.UpsertGoogleUser(ctx, info, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID)
	require.Equal(t, "Grace H.", again.Name)

	users, err := st.ListUsers(ctx, &store.FindUser{})
	require.NoError(t, err)
	require.Len(t, users, 1)
}
