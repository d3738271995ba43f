package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/api/middleware"
	"github.com/Peblo69/BGman4e/internal/chat"
	"github.com/Peblo69/BGman4e/internal/images"
	"github.com/Peblo69/BGman4e/internal/models"
	"github.com/Peblo69/BGman4e/internal/repository"
)

const maxDerivedTitleLen = 50

// StreamRequest represents a chat completion request. SessionID empty means
// a new session is created after the stream finishes.
type StreamRequest struct {
	SessionID string           `json:"session_id"`
	Title     string           `json:"title"`
	Messages  []models.Message `json:"messages"`
}

// streamEvent is one SSE/WS payload
type streamEvent struct {
	Content   string `json:"content,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Done      bool   `json:"done,omitempty"`
}

// ChatHandler streams completions and persists the finished conversation
type ChatHandler struct {
	streamer *chat.Streamer
	store    *chat.Store
	profiles repository.ProfileRepository
	uploads  *images.Registry
	log      *logrus.Entry
}

// NewChatHandler creates a chat handler
func NewChatHandler(streamer *chat.Streamer, store *chat.Store, profiles repository.ProfileRepository, uploads *images.Registry) *ChatHandler {
	return &ChatHandler{
		streamer: streamer,
		store:    store,
		profiles: profiles,
		uploads:  uploads,
		log:      logrus.WithField("component", "api.chat"),
	}
}

// deriveTitle builds a session title from the last user message
func deriveTitle(messages []models.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != models.RoleUserMessage {
			continue
		}
		title := strings.TrimSpace(messages[i].Content)
		if title == "" {
			break
		}
		runes := []rune(title)
		if len(runes) > maxDerivedTitleLen {
			title = string(runes[:maxDerivedTitleLen]) + "…"
		}
		return title
	}
	return ""
}

// validateRequest checks the request and resolves session ownership.
// Returns the fiber error response (already written) on failure.
func (h *ChatHandler) validateRequest(c *fiber.Ctx, req *StreamRequest, userID uuid.UUID) error {
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Моля, въведете съобщение.",
		})
	}

	if req.SessionID != "" {
		session, err := h.store.GetByID(c.Context(), req.SessionID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Възникна грешка. Моля, опитайте отново.",
			})
		}
		if session == nil || session.UserID != userID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Разговорът не е намерен.",
			})
		}
	}

	return nil
}

// persist saves the finished conversation and settles the bookkeeping around
// it. Runs after the stream, so failures are logged, not surfaced.
func (h *ChatHandler) persist(userID uuid.UUID, req StreamRequest, assistantContent string) string {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	messages := append(req.Messages, models.Message{
		ID:        uuid.New().String(),
		Role:      models.RoleAssistantMessage,
		Content:   assistantContent,
		Timestamp: time.Now(),
	})

	sessionID := req.SessionID
	if sessionID == "" {
		title := req.Title
		if title == "" {
			title = deriveTitle(req.Messages)
		}
		id, err := h.store.Create(ctx, userID, messages, title)
		if err != nil {
			h.log.WithError(err).Error("failed to create session after stream")
			return ""
		}
		sessionID = id
	} else {
		if err := h.store.Update(ctx, sessionID, messages); err != nil {
			h.log.WithError(err).Error("failed to update session after stream")
		}
	}

	if err := h.profiles.IncrementMessageCount(ctx, userID, 1); err != nil {
		h.log.WithError(err).Warn("failed to increment message count")
	}

	// Transient uploads were encoded into the request, they are no longer
	// needed once the exchange is stored
	h.uploads.ReleaseMessages(req.Messages)

	return sessionID
}

// StreamSSE handles POST /chat/stream
func (h *ChatHandler) StreamSSE(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}

	var req StreamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Невалидна заявка.",
		})
	}

	if err := h.validateRequest(c, &req, userID); err != nil {
		return err
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		// A failed write means the client is gone; cancelling tears the
		// upstream completion stream down with it.
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		writeEvent := func(ev streamEvent) {
			data, err := json.Marshal(ev)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				cancel()
				return
			}
			if err := w.Flush(); err != nil {
				cancel()
			}
		}

		var assistant strings.Builder
		var failed bool

		h.streamer.StreamChat(ctx, req.Messages, chat.StreamCallbacks{
			OnChunk: func(text string) {
				assistant.WriteString(text)
				writeEvent(streamEvent{Content: text})
			},
			OnError: func(message string) {
				failed = true
				writeEvent(streamEvent{Error: message})
			},
			OnComplete: func() {},
		})

		if ctx.Err() != nil {
			// Client disconnected mid-stream; nothing to persist or emit
			return
		}

		if !failed && assistant.Len() > 0 {
			sessionID := h.persist(userID, req, assistant.String())
			if sessionID != "" && req.SessionID == "" {
				writeEvent(streamEvent{SessionID: sessionID})
			}
		}

		fmt.Fprintf(w, "data: [DONE]\n\n")
		w.Flush()
	})

	return nil
}

// StreamWS handles the WebSocket variant at /ws/chat. The authenticated user
// is placed in Locals by the upgrade middleware.
func (h *ChatHandler) StreamWS(c *websocket.Conn) {
	defer c.Close()

	userID, ok := c.Locals("user_id").(uuid.UUID)
	if !ok {
		c.WriteJSON(streamEvent{Error: "Моля, влезте в акаунта си."})
		return
	}

	var req StreamRequest
	if err := c.ReadJSON(&req); err != nil {
		c.WriteJSON(streamEvent{Error: "Невалидна заявка."})
		return
	}
	if len(req.Messages) == 0 {
		c.WriteJSON(streamEvent{Error: "Моля, въведете съобщение."})
		return
	}

	if req.SessionID != "" {
		session, err := h.store.GetByID(context.Background(), req.SessionID)
		if err != nil || session == nil || session.UserID != userID {
			c.WriteJSON(streamEvent{Error: "Разговорът не е намерен."})
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var assistant strings.Builder
	var failed bool

	h.streamer.StreamChat(ctx, req.Messages, chat.StreamCallbacks{
		OnChunk: func(text string) {
			assistant.WriteString(text)
			if err := c.WriteJSON(streamEvent{Content: text}); err != nil {
				// Socket is gone, abort the upstream stream
				failed = true
				cancel()
			}
		},
		OnError: func(message string) {
			failed = true
			c.WriteJSON(streamEvent{Error: message})
		},
		OnComplete: func() {},
	})

	if !failed && assistant.Len() > 0 {
		sessionID := h.persist(userID, req, assistant.String())
		if sessionID != "" && req.SessionID == "" {
			c.WriteJSON(streamEvent{SessionID: sessionID})
		}
	}

	c.WriteJSON(streamEvent{Done: true})
}
