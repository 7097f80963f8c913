package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/civicdesk/complaint-service/internal/api/http/handlers"
	"github.com/civicdesk/complaint-service/internal/auth"
	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Agent          *handlers.AgentHandler
	Public         *handlers.PublicHandler
	Feedback       *handlers.FeedbackHandler
	Notifications  *handlers.NotificationsHandler
	Members        *handlers.MembersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	MetricsPath    string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		app.Get(cfg.MetricsPath, adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	api := app.Group("/api")

	public := api.Group("/public")
	public.Get("/track/:code", cfg.Public.Track)
	public.Get("/feed", cfg.Public.Feed)
	public.Get("/categories", cfg.Public.Categories)
	public.Get("/departments", cfg.Public.Departments)
	public.Get("/complaints/:id/feedback/stats", cfg.AuthMiddleware.HandleOptional, cfg.Feedback.Stats)

	// Ownership and rating rules are enforced by the services so callers get the
	// specific error codes.
	citizen := api.Group("/citizen", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	citizen.Post("/complaints", auth.RequireRole(domain.RoleCitizen), cfg.Complaints.Create)
	citizen.Get("/complaints", cfg.Complaints.ListMine)
	citizen.Get("/complaints/:id", cfg.Complaints.Get)
	citizen.Get("/complaints/:id/history", cfg.Complaints.History)
	citizen.Put("/complaints/:id/feedback", cfg.Feedback.Upsert)
	citizen.Get("/complaints/:id/feedback", cfg.Feedback.Mine)
	citizen.Get("/notifications", cfg.Notifications.List)
	citizen.Get("/notifications/unread-count", cfg.Notifications.UnreadCount)
	citizen.Post("/notifications/read-all", cfg.Notifications.MarkAllRead)
	citizen.Post("/notifications/:id/read", cfg.Notifications.MarkRead)

	agent := api.Group("/agent", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	agent.Get("/complaints", cfg.Agent.List)
	agent.Get("/complaints/:id/history", cfg.Complaints.History)
	agent.Post("/complaints/:id/status", cfg.Agent.ChangeStatus)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/departments/:id/members", cfg.Members.Add)
	admin.Get("/departments/:id/members", cfg.Members.List)
	admin.Patch("/departments/:id/members/:userId", cfg.Members.ChangeRole)
	admin.Delete("/departments/:id/members/:userId", cfg.Members.Remove)
}
