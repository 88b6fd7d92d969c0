package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/medipulse/medipulse-backend/internal/services"
	"github.com/medipulse/medipulse-backend/internal/storage"
)

// ChatHandler handles the conversation API requests.
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// StartRequest is the payload for POST /api/start.
type StartRequest struct {
	Language string `json:"language"`
}

// ChatRequest is the payload for POST /api/chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// SessionRequest is the payload for POST /api/end.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// LanguageRequest is the payload for POST /api/language.
type LanguageRequest struct {
	SessionID string `json:"session_id"`
	Language  string `json:"language"`
}

// Start creates a new conversation session.
func (h *ChatHandler) Start(c *fiber.Ctx) error {
	var req StartRequest
	// An empty body is fine: language is optional.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	result, err := h.chatService.Start(c.Context(), req.Language)
	if err != nil {
		return h.respondError(c, err)
	}

	response := fiber.Map{
		"session_id": result.SessionID,
		"language":   result.Language,
	}
	if result.Question != nil {
		response["question"] = result.Question
		response["progress"] = result.Progress
	} else {
		response["message"] = result.Greeting
	}
	return c.JSON(response)
}

// Chat applies one user message to a session.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.chatService.Chat(c.Context(), req.SessionID, req.Message)
	if err != nil {
		return h.respondError(c, err)
	}

	response := fiber.Map{
		"stage": result.Stage,
	}
	switch {
	case result.NextQuestion != nil:
		response["next_question"] = result.NextQuestion
		response["progress"] = result.Progress
	default:
		response["response"] = result.Message
		if len(result.Options) > 0 {
			response["options"] = result.Options
		}
	}
	return c.JSON(response)
}

// End closes a conversation with a generated summary.
func (h *ChatHandler) End(c *fiber.Ctx) error {
	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	summary, err := h.chatService.End(c.Context(), req.SessionID)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"summary": summary,
	})
}

// SetLanguage switches the session language.
func (h *ChatHandler) SetLanguage(c *fiber.Ctx) error {
	var req LanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	lang, err := h.chatService.SetLanguage(c.Context(), req.SessionID, req.Language)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"language": lang,
	})
}

// respondError maps the service error taxonomy onto the API envelope:
// unknown or expired session 401 with a restart hint, validation 400,
// everything else 500 with a localized generic message.
func (h *ChatHandler) respondError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	var internalErr *services.InternalError

	switch {
	case errors.Is(err, storage.ErrSessionNotFound), errors.Is(err, storage.ErrSessionExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":  "Invalid or expired session",
			"action": "restart",
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationErr.Message,
		})
	case errors.As(err, &internalErr):
		log.Printf("❌ Generation service error: %v", internalErr.Err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": internalErr.Message,
		})
	default:
		log.Printf("❌ Unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
