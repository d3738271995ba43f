package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Peblo69/BGman4e/internal/api/middleware"
	"github.com/Peblo69/BGman4e/internal/chat"
	"github.com/Peblo69/BGman4e/internal/models"
)

// CreateSessionRequest represents a new chat session
type CreateSessionRequest struct {
	Title    string           `json:"title"`
	Messages []models.Message `json:"messages"`
}

// UpdateSessionRequest carries a full replacement message list
type UpdateSessionRequest struct {
	Messages []models.Message `json:"messages"`
}

// UpdateTitleRequest renames a session
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// SessionHandler serves the chat session CRUD surface
type SessionHandler struct {
	store *chat.Store
}

// NewSessionHandler creates a session handler
func NewSessionHandler(store *chat.Store) *SessionHandler {
	return &SessionHandler{store: store}
}

// ownedSession loads a session and verifies it belongs to the caller.
// Foreign sessions are indistinguishable from missing ones.
func (h *SessionHandler) ownedSession(c *fiber.Ctx) (*models.ChatSession, error) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return nil, err
	}

	session, err := h.store.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Възникна грешка. Моля, опитайте отново.",
		})
	}
	if session == nil || session.UserID != userID {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Разговорът не е намерен.",
		})
	}

	return session, nil
}

// List handles GET /sessions
func (h *SessionHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"sessions": h.store.ListByUser(c.Context(), userID),
	})
}

// Get handles GET /sessions/:id
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if session == nil {
		return err
	}
	return c.JSON(session)
}

// Create handles POST /sessions
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Невалидна заявка.",
		})
	}

	id, err := h.store.Create(c.Context(), userID, req.Messages, req.Title)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Неуспешно създаване на разговор.",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// UpdateMessages handles PUT /sessions/:id/messages
func (h *SessionHandler) UpdateMessages(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if session == nil {
		return err
	}

	var req UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Невалидна заявка.",
		})
	}

	if err := h.store.Update(c.Context(), session.ID, req.Messages); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Неуспешно запазване на разговора.",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// UpdateTitle handles PUT /sessions/:id/title
func (h *SessionHandler) UpdateTitle(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if session == nil {
		return err
	}

	var req UpdateTitleRequest
	if err := c.BodyParser(&req); err != nil || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Невалидна заявка.",
		})
	}

	if err := h.store.UpdateTitle(c.Context(), session.ID, req.Title); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Неуспешно преименуване на разговора.",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}

// Delete handles DELETE /sessions/:id
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	session, err := h.ownedSession(c)
	if session == nil {
		return err
	}

	if !h.store.Delete(c.Context(), session.ID) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Неуспешно изтриване на разговора.",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
