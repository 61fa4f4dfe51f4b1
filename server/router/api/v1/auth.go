package v1

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/openclaw/assistant/server/auth"
	"github.com/openclaw/assistant/store"
)

const (
	userContextKey    = "user"
	sessionContextKey = "session"
	stateCookieName   = "oauth_state"
)

// sessionMiddleware resolves the current user from the session cookie or a
// bearer token and rejects unauthenticated requests.
func (s *APIV1Service) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := tokenFromRequest(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		user, session, err := s.AuthService.ValidateSession(c.Request().Context(), token, time.Now())
		if err != nil {
			slog.Error("session validation failed", slog.String("error", err.Error()))
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to validate session")
		}
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
		}

		c.Set(userContextKey, user)
		c.Set(sessionContextKey, session)
		return next(c)
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(auth.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

func currentUser(c echo.Context) *store.User {
	user, _ := c.Get(userContextKey).(*store.User)
	return user
}

func currentSession(c echo.Context) *store.Session {
	session, _ := c.Get(sessionContextKey).(*store.Session)
	return session
}

// GoogleLogin redirects the browser to the Google consent page.
func (s *APIV1Service) GoogleLogin(c echo.Context) error {
	if !s.GoogleProvider.IsConfigured() {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "google login is not configured")
	}

	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   !s.Profile.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusFound, s.GoogleProvider.AuthCodeURL(state))
}

// GoogleCallback finishes the OAuth flow: code exchange, user upsert, session
// cookie. Failures redirect back to the login page with an error key rather
// than surfacing provider detail.
func (s *APIV1Service) GoogleCallback(c echo.Context) error {
	loginURL := s.Profile.InstanceURL + "/login"

	if errParam := c.QueryParam("error"); errParam != "" {
		slog.Warn("oauth denied", slog.String("error", errParam))
		return c.Redirect(http.StatusFound, loginURL+"?error=oauth_denied")
	}

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return c.Redirect(http.StatusFound, loginURL+"?error=missing_params")
	}
	if cookie, err := c.Cookie(stateCookieName); err != nil || cookie.Value != state {
		return c.Redirect(http.StatusFound, loginURL+"?error=state_mismatch")
	}

	ctx := c.Request().Context()
	info, err := s.GoogleProvider.ExchangeCode(ctx, code)
	if err != nil {
		slog.Error("oauth code exchange failed", slog.String("error", err.Error()))
		return c.Redirect(http.StatusFound, loginURL+"?error=auth_failed")
	}
	if !info.EmailVerified {
		return c.Redirect(http.StatusFound, loginURL+"?error=email_not_verified")
	}

	now := time.Now()
	user, err := s.AuthService.UpsertGoogleUser(ctx, info, now)
	if err != nil {
		slog.Error("failed to upsert google user", slog.String("error", err.Error()))
		return c.Redirect(http.StatusFound, loginURL+"?error=auth_failed")
	}

	token, _, err := s.AuthService.IssueSession(ctx, user, now)
	if err != nil {
		slog.Error("failed to issue session", slog.String("error", err.Error()))
		return c.Redirect(http.StatusFound, loginURL+"?error=auth_failed")
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		Secure:   !s.Profile.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	return c.Redirect(http.StatusFound, s.Profile.InstanceURL)
}

// Logout revokes the current session and clears the cookie.
func (s *APIV1Service) Logout(c echo.Context) error {
	session := currentSession(c)
	if err := s.AuthService.RevokeSession(c.Request().Context(), session.ID); err != nil {
		slog.Error("failed to revoke session", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to log out")
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.NoContent(http.StatusNoContent)
}

type userResponse struct {
	ID        int32      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Tier      store.Tier `json:"tier"`
	CreatedTs int64      `json:"createdTs"`
}

// Me returns the authenticated user's profile.
func (s *APIV1Service) Me(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, &userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Tier:      user.Tier,
		CreatedTs: user.CreatedTs,
	})
}
