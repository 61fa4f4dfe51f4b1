package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/openclaw/assistant/internal/profile"
	"github.com/openclaw/assistant/store"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleUserInfo is the subset of the Google userinfo response we consume.
type GoogleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}

// GoogleProvider wraps the OAuth code exchange and userinfo fetch.
type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(p *profile.Profile) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     p.GoogleClientID,
			ClientSecret: p.GoogleClientSecret,
			RedirectURL:  p.InstanceURL + "/api/v1/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *GoogleProvider) IsConfigured() bool {
	return g.config.ClientID != "" && g.config.ClientSecret != ""
}

// AuthCodeURL returns the Google consent page URL carrying the CSRF state.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode trades the callback code for tokens and fetches the user's
// profile from the userinfo endpoint.
func (g *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*GoogleUserInfo, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}

	resp, err := g.config.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch google userinfo")
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, errors.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	info := &GoogleUserInfo{}
	if err := json.NewDecoder(resp.Body).Decode(info); err != nil {
		return nil, errors.Wrap(err, "failed to decode google userinfo")
	}
	if info.Sub == "" || info.Email == "" {
		return nil, errors.New("google userinfo is missing sub or email")
	}
	return info, nil
}

// UpsertGoogleUser finds or creates the local user for a Google identity.
// New users start on the trial tier.
func (s *Service) UpsertGoogleUser(ctx context.Context, info *GoogleUserInfo, now time.Time) (*store.User, error) {
	user, err := s.store.GetUser(ctx, &store.FindUser{GoogleID: &info.Sub})
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by google id")
	}
	if user != nil {
		if info.Name != "" && info.Name != user.Name {
			nowTs := now.Unix()
			user, err = s.store.UpdateUser(ctx, &store.UpdateUser{
				ID:        user.ID,
				Name:      &info.Name,
				UpdatedTs: &nowTs,
			})
			if err != nil {
				return nil, errors.Wrap(err, "failed to update user profile")
			}
		}
		return user, nil
	}

	nowTs := now.Unix()
	user, err = s.store.CreateUser(ctx, &store.User{
		Email:     info.Email,
		Name:      info.Name,
		GoogleID:  info.Sub,
		Tier:      store.TierTrial,
		CreatedTs: nowTs,
		UpdatedTs: nowTs,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return user, nil
}
