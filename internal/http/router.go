package http

import (
	"time"

	"github.com/dreamlift/admin-gateway/internal/config"
	"github.com/dreamlift/admin-gateway/internal/http/handlers"
	"github.com/dreamlift/admin-gateway/internal/middleware"
	"github.com/dreamlift/admin-gateway/internal/rbac"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	User     *handlers.UserHandler
	Admin    *handlers.AdminHandler
	Donation *handlers.DonationHandler
	Health   *handlers.HealthHandler
	WS       *handlers.WSHub
}

// SetupRouter mounts every route on app. rdb may be nil, which disables rate
// limiting.
func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	h Handlers,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/health"
	})))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	app.Get("/health", h.Health.Health)

	api := app.Group("/api/v1")
	limit := middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute)

	// Public, limited per IP
	api.Post("/auth/login", limit, h.Auth.Login)

	meta := handlers.NewMetaHandler()
	api.Get("/meta/campaign-statuses", limit, meta.GetCampaignStatuses)
	api.Get("/meta/roles", limit, meta.GetRoles)
	api.Get("/meta/report-periods", limit, meta.GetReportPeriods)

	// Protected, limited per user
	protected := api.Group("", middleware.AuthMiddleware(cfg, log), limit)
	protected.Get("/me", h.User.GetMe)
	protected.Post("/donations/intent", middleware.RequirePermission(rbac.PermDonate), h.Donation.CreateIntent)

	admin := protected.Group("/admin", middleware.RequirePermission(rbac.PermViewDashboard))

	admin.Get("/dashboard", h.Admin.Dashboard)
	admin.Get("/analytics", h.Admin.Analytics)
	admin.Post("/cache/invalidate", h.Admin.InvalidateCache)

	// Campaigns
	admin.Get("/campaigns", h.Admin.ListCampaigns)
	admin.Get("/campaigns/pending", h.Admin.ListPending)
	admin.Post("/campaigns/:id/approve", middleware.RequirePermission(rbac.PermModerateCampaigns), h.Admin.ApproveCampaign)
	admin.Post("/campaigns/:id/reject", middleware.RequirePermission(rbac.PermModerateCampaigns), h.Admin.RejectCampaign)
	admin.Put("/campaigns/:id", middleware.RequirePermission(rbac.PermEditCampaigns), h.Admin.UpdateCampaign)
	admin.Delete("/campaigns/:id", middleware.RequirePermission(rbac.PermDeleteCampaigns), h.Admin.DeleteCampaign)

	// Users
	admin.Get("/users", h.Admin.ListUsers)
	admin.Put("/users/:id/role", middleware.RequirePermission(rbac.PermManageUsers), h.Admin.ChangeUserRole)
	admin.Put("/users/:id/status", middleware.RequirePermission(rbac.PermManageUsers), h.Admin.SetUserStatus)

	// Reports and audit
	admin.Get("/reports/financial", middleware.RequirePermission(rbac.PermViewReports), h.Admin.FinancialReport)
	admin.Get("/audit", h.Admin.AuditTrail)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(h.WS.HandleWS))
}
