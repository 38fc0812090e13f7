package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/icar-directory/backend/internal/config"
	"github.com/icar-directory/backend/internal/http/dto"
	"github.com/icar-directory/backend/internal/http/handlers"
	"github.com/icar-directory/backend/internal/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Directory  *handlers.DirectoryHandler
	Edits      *handlers.EditHandler
	Moderation *handlers.ModerationHandler
	Me         *handlers.MeHandler
	Claims     *handlers.ClaimHandler
	Taxonomy   *handlers.TaxonomyHandler
	// WSHub is nil when Redis is disabled.
	WSHub *handlers.WSHub
}

// SetupRouter mounts the API. rdb may be nil, which disables rate limiting.
func SetupRouter(app *fiber.App, cfg *config.Config, log *zap.Logger, rdb *redis.Client, h Handlers) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Store: cfg.StoreDriver, Redis: rdb != nil})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, "api", cfg.RateLimitPerMinute, time.Minute, log))

	// Directory reads (public, role filtered when a token is present)
	public := api.Group("", middleware.OptionalAuthMiddleware(cfg, log))
	public.Get("/stakeholders", h.Directory.ListStakeholders)
	public.Get("/stakeholders/:id", h.Directory.GetStakeholder)
	public.Get("/projects", h.Directory.ListProjects)
	public.Get("/projects/:id", h.Directory.GetProject)
	public.Get("/opportunities", h.Directory.ListOpportunities)
	public.Get("/stakeholders/:id/claim", h.Claims.Status)

	// Claims may be filed without an account
	public.Post("/claims", h.Claims.Submit)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	protected.Get("/me", h.Me.GetMe)
	protected.Get("/me/trust", h.Me.GetTrust)
	protected.Get("/me/edits", h.Me.GetEdits)

	// Edits go through moderation
	protected.Put("/stakeholders/:id", h.Edits.UpdateStakeholder)
	protected.Put("/projects/:id", h.Edits.UpdateProject)
	protected.Post("/projects", h.Directory.CreateProject)
	protected.Delete("/projects/:id", h.Directory.DeleteProject)

	// Moderation queue (admin)
	admin := protected.Group("/moderation", middleware.AdminMiddleware())
	admin.Get("/edits", h.Moderation.ListPending)
	admin.Get("/edits/:id", h.Moderation.GetEdit)
	admin.Post("/edits/:id/approve", h.Moderation.Approve)
	admin.Post("/edits/:id/reject", h.Moderation.Reject)
	admin.Get("/history/:entityType/:id", h.Moderation.History)
	admin.Get("/claims", h.Claims.List)
	admin.Get("/claims/:id", h.Claims.Get)
	admin.Post("/claims/:id/approve", h.Claims.Approve)
	admin.Post("/claims/:id/reject", h.Claims.Reject)
	admin.Get("/taxonomy", h.Taxonomy.Get)
	admin.Put("/taxonomy", h.Taxonomy.Set)

	// WebSocket
	if h.WSHub != nil {
		app.Use("/ws", handlers.WSUpgradeMiddleware())
		app.Get("/ws", websocket.New(h.WSHub.HandleWS))
	}
}
