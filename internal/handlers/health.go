package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medipulse/medipulse-backend/internal/storage"
)

// HealthHandler reports service liveness and session stats.
type HealthHandler struct {
	store          storage.Store
	mode           string
	groqConfigured bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store storage.Store, mode string, groqConfigured bool) *HealthHandler {
	return &HealthHandler{
		store:          store,
		mode:           mode,
		groqConfigured: groqConfigured,
	}
}

// Health is the monitoring endpoint.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"services": fiber.Map{
			"sessions":   h.store.Count(),
			"generation": h.groqConfigured,
		},
	})
}

// Info is the root service-description endpoint.
func (h *HealthHandler) Info(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "MediPulse Backend API",
		"version": "1.0.0",
		"mode":    h.mode,
		"endpoints": fiber.Map{
			"start":    "/api/start",
			"chat":     "/api/chat",
			"end":      "/api/end",
			"language": "/api/language",
			"health":   "/health",
		},
	})
}
