package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fluxdesk/helpdesk-sla/internal/api/http/handlers"
	"github.com/fluxdesk/helpdesk-sla/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Sla            *handlers.SlaHandler
	Config         *handlers.ConfigHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	slaGroup := api.Group("/sla")
	slaGroup.Get("/dashboard", cfg.Sla.Dashboard)
	slaGroup.Get("/tickets/:id", cfg.Sla.TicketSla)
	slaGroup.Get("/configs", cfg.Config.ListConfigs)
	slaGroup.Get("/business-hours", cfg.Config.ListBusinessHours)
	slaGroup.Get("/holidays", cfg.Config.ListHolidays)

	tickets := api.Group("/tickets")
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/pause", cfg.Tickets.Pause)
	tickets.Post("/:id/resume", cfg.Tickets.Resume)

	admin := app.Group("/admin/sla", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Post("/refresh", cfg.Sla.Recompute)
	admin.Get("/runs", cfg.Sla.Runs)
	admin.Put("/configs/:priority", cfg.Config.UpdateConfig)
	admin.Put("/business-hours", cfg.Config.UpsertBusinessHours)
	admin.Post("/holidays/generate", cfg.Config.GenerateHolidays)
}
