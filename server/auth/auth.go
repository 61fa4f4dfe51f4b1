package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/openclaw/assistant/store"
)

const (
	// SessionCookieName carries the signed session token in browsers.
	SessionCookieName = "assistant_session"
	// SessionDuration bounds how long a login survives without re-auth.
	SessionDuration = 30 * 24 * time.Hour
)

// SessionClaims is the JWT payload for a login session. The token only
// references the server-side session row; deleting the row revokes the login
// even while the token is still unexpired.
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	UserID    int32  `json:"userId"`
	jwt.RegisteredClaims
}

// Service issues and validates login sessions.
type Service struct {
	store  *store.Store
	secret []byte
}

func NewService(st *store.Store, secret string) *Service {
	return &Service{store: st, secret: []byte(secret)}
}

// IssueSession creates a session row for the user and returns a signed token
// embedding the session ID.
func (s *Service) IssueSession(ctx context.Context, user *store.User, now time.Time) (string, *store.Session, error) {
	expiresAt := now.Add(SessionDuration)
	session, err := s.store.CreateSession(ctx, &store.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedTs: now.Unix(),
		ExpiresTs: expiresAt.Unix(),
	})
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to create session")
	}

	claims := SessionClaims{
		SessionID: session.ID,
		UserID:    user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to sign session token")
	}
	return token, session, nil
}

// ValidateSession resolves a token to its user. It returns (nil, nil, nil)
// for tokens that are malformed, expired, revoked, or orphaned; a non-nil
// error means the lookup itself failed.
func (s *Service) ValidateSession(ctx context.Context, token string, now time.Time) (*store.User, *store.Session, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil, nil
	}

	session, err := s.store.GetSession(ctx, &store.FindSession{ID: &claims.SessionID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get session")
	}
	if session == nil {
		return nil, nil, nil
	}
	if session.ExpiresTs <= now.Unix() {
		// Lazy cleanup; the periodic sweep catches the rest.
		_ = s.store.DeleteSession(ctx, &store.DeleteSession{ID: session.ID})
		return nil, nil, nil
	}

	user, err := s.store.GetUser(ctx, &store.FindUser{ID: &session.UserID})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to get session user")
	}
	if user == nil {
		return nil, nil, nil
	}
	return user, session, nil
}

// RevokeSession deletes the session row, invalidating its token immediately.
func (s *Service) RevokeSession(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, &store.DeleteSession{ID: sessionID})
}
