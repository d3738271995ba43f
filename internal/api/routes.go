package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/Peblo69/BGman4e/internal/api/handlers"
	"github.com/Peblo69/BGman4e/internal/api/middleware"
	"github.com/Peblo69/BGman4e/internal/auth"
	"github.com/Peblo69/BGman4e/internal/chat"
	"github.com/Peblo69/BGman4e/internal/images"
	"github.com/Peblo69/BGman4e/internal/repository"
)

// Services bundles everything the route tree needs
type Services struct {
	Auth      *auth.Service
	Store     *chat.Store
	Streamer  *chat.Streamer
	Generator *images.Generator
	Analyzer  *images.Analyzer
	Uploads   *images.Registry
	Profiles  repository.ProfileRepository
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *Services) {
	api := app.Group("/api/v1")

	// ========================================
	// Public routes (no authentication needed)
	// ========================================

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "bulgargpt-backend",
		})
	})

	authGroup := api.Group("/auth")
	authGroup.Post("/login", middleware.AuthRateLimit(), handlers.Login(svc.Auth))
	authGroup.Post("/signup", middleware.AuthRateLimit(), handlers.Signup(svc.Auth))
	authGroup.Post("/refresh", handlers.Refresh(svc.Auth))
	authGroup.Post("/reset", middleware.AuthRateLimit(), handlers.ForgotPassword(svc.Auth))
	authGroup.Post("/reset/confirm", middleware.AuthRateLimit(), handlers.ResetPassword(svc.Auth))

	// ========================================
	// Protected routes (authentication required)
	// ========================================

	protected := api.Group("", middleware.AuthRequired(svc.Auth))

	protected.Post("/auth/logout", handlers.Logout(svc.Auth))
	protected.Get("/auth/me", handlers.Me(svc.Auth))
	protected.Put("/auth/profile", handlers.UpdateProfile(svc.Auth))
	protected.Put("/auth/password", handlers.ChangePassword(svc.Auth))
	protected.Put("/auth/email", handlers.ChangeEmail(svc.Auth))

	protected.Get("/profile", handlers.GetProfile(svc.Profiles))

	chatHandler := handlers.NewChatHandler(svc.Streamer, svc.Store, svc.Profiles, svc.Uploads)
	protected.Post("/chat/stream", middleware.ChatRateLimit(), chatHandler.StreamSSE)

	sessionHandler := handlers.NewSessionHandler(svc.Store)
	protected.Get("/sessions", sessionHandler.List)
	protected.Post("/sessions", sessionHandler.Create)
	protected.Get("/sessions/:id", sessionHandler.Get)
	protected.Put("/sessions/:id/messages", sessionHandler.UpdateMessages)
	protected.Put("/sessions/:id/title", sessionHandler.UpdateTitle)
	protected.Delete("/sessions/:id", sessionHandler.Delete)

	imageHandler := handlers.NewImageHandler(svc.Generator, svc.Uploads, svc.Analyzer, svc.Profiles)
	protected.Get("/images/models", imageHandler.Models)
	protected.Post("/images/generate", middleware.ImageRateLimit(), imageHandler.Generate)
	protected.Post("/uploads", imageHandler.Upload)
	protected.Delete("/uploads/:id", imageHandler.DeleteUpload)

	// ========================================
	// WebSocket routes (with auth)
	// ========================================

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			token := c.Query("token")
			if token == "" {
				token = auth.ExtractTokenFromBearer(c.Get("Authorization"))
			}

			if token != "" {
				user, _, err := svc.Auth.ValidateAccessToken(c.Context(), token)
				if err == nil {
					c.Locals("user_id", user.ID)
					c.Locals("allowed", true)
					return c.Next()
				}
			}

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Моля, влезте в акаунта си.",
			})
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/chat", websocket.New(chatHandler.StreamWS))
}
