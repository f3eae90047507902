package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/road-damage-service/internal/api/http/handlers"
	"github.com/spec-kit/road-damage-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/verify", cfg.Auth.Verify)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", auth.RequireCapability(auth.CapWriteOwnCreate), cfg.Tickets.Create)
	tickets.Get("", auth.RequireCapability(auth.CapReadOwn), cfg.Tickets.List)
	tickets.Get("/:id", auth.RequireCapability(auth.CapReadOwn), cfg.Tickets.Get)
	tickets.Get("/:id/history", auth.RequireCapability(auth.CapReadOwn), cfg.Tickets.History)

	admin := app.Group("/admin/tickets", cfg.AuthMiddleware.Handle)
	admin.Get("", auth.RequireCapability(auth.CapReadAll), cfg.AdminTickets.List)
	admin.Patch("/:id/status", auth.RequireCapability(auth.CapWriteStatus), cfg.AdminTickets.UpdateStatus)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle)
	dashboard.Get("/stats", cfg.Dashboard.Stats)
}
