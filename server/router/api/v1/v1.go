package v1

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/openclaw/assistant/internal/profile"
	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/server/auth"
	"github.com/openclaw/assistant/server/billing"
	"github.com/openclaw/assistant/server/chat"
	"github.com/openclaw/assistant/server/middleware"
	"github.com/openclaw/assistant/store"
)

// maxConcurrentChats bounds in-flight orchestrations per instance; further
// chat requests queue on the semaphore until a slot frees up.
const maxConcurrentChats = 16

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	AuthService    *auth.Service
	GoogleProvider *auth.GoogleProvider
	BillingService *billing.Service

	// Orchestrator is nil when no AI provider is configured; chat endpoints
	// then answer 503.
	Orchestrator *chat.Orchestrator

	chatLimiter   *middleware.RateLimiter
	chatSemaphore *semaphore.Weighted
}

func NewAPIV1Service(p *profile.Profile, st *store.Store) *APIV1Service {
	s := &APIV1Service{
		Profile:        p,
		Store:          st,
		AuthService:    auth.NewService(st, p.Secret),
		GoogleProvider: auth.NewGoogleProvider(p),
		BillingService: billing.NewService(st),
		// 1 chat message per 2 seconds sustained, burst of 5.
		chatLimiter:   middleware.NewRateLimiter(rate.Limit(0.5), 5),
		chatSemaphore: semaphore.NewWeighted(maxConcurrentChats),
	}

	if p.IsAIEnabled() {
		cfg := ai.NewConfigFromProfile(p)
		if err := cfg.Validate(); err != nil {
			slog.Warn("ai config invalid, chat endpoints disabled", slog.String("error", err.Error()))
		} else if llm, err := ai.NewLLMService(cfg); err != nil {
			slog.Warn("failed to init llm service, chat endpoints disabled", slog.String("error", err.Error()))
		} else {
			s.Orchestrator = chat.NewOrchestrator(llm)
		}
	}

	return s
}

// RegisterRoutes mounts all /api/v1 routes on the echo server.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.Use(echomw.CORS())

	// Public routes.
	g.GET("/ping", s.Ping)
	g.GET("/auth/google", s.GoogleLogin)
	g.GET("/auth/google/callback", s.GoogleCallback)
	g.POST("/billing/webhook", s.BillingWebhook)

	// Authenticated routes.
	authed := g.Group("", s.sessionMiddleware)
	authed.POST("/auth/logout", s.Logout)
	authed.GET("/auth/me", s.Me)

	authed.GET("/conversations", s.ListConversations)
	authed.POST("/conversations", s.CreateConversation)
	authed.GET("/conversations/:uid", s.GetConversation)
	authed.DELETE("/conversations/:uid", s.DeleteConversation)
	authed.POST("/conversations/:uid/messages", s.SendMessage)
	authed.POST("/chat", s.QuickChat)

	authed.GET("/billing/status", s.BillingStatus)
}

func (s *APIV1Service) Ping(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok", "version": s.Profile.Version})
}
