package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/deskhive/ticketing/internal/api/http/handlers"
	"github.com/deskhive/ticketing/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Agents         *handlers.AgentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/agents/register", cfg.Agents.Register)
	authGroup.Post("/agents/login", cfg.Agents.Login)

	tickets := app.Group("/api/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/unassigned", cfg.Tickets.ListUnassignedTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)

	// Claiming and transitions require an authenticated agent.
	tickets.Patch("/:id/assign", cfg.AuthMiddleware.Handle, cfg.Tickets.AssignTicket)
	tickets.Delete("/:id/assign", cfg.AuthMiddleware.Handle, cfg.Tickets.UnassignTicket)
	tickets.Patch("/:id/status", cfg.AuthMiddleware.Handle, cfg.Tickets.UpdateStatus)
}
