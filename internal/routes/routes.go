package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medipulse/medipulse-backend/internal/handlers"
)

// SetupRoutes configures all API routes.
func SetupRoutes(app *fiber.App, chat *handlers.ChatHandler, health *handlers.HealthHandler) {
	// Root service-info endpoint
	app.Get("/", health.Info)

	// Health check for monitoring
	app.Get("/health", health.Health)

	// Conversation API
	api := app.Group("/api")
	api.Post("/start", chat.Start)
	api.Post("/chat", chat.Chat)
	api.Post("/end", chat.End)
	api.Post("/language", chat.SetLanguage)
}
