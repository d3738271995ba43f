package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Peblo69/BGman4e/internal/api/middleware"
	"github.com/Peblo69/BGman4e/internal/auth"
	"github.com/Peblo69/BGman4e/internal/repository"
)

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// ChangePasswordRequest represents a password change with re-authentication
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangeEmailRequest represents an email change with re-authentication
type ChangeEmailRequest struct {
	Password string `json:"password"`
	NewEmail string `json:"new_email"`
}

// GetProfile handles GET /profile. Returns the per-user usage counters.
func GetProfile(profiles repository.ProfileRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return err
		}

		profile, err := profiles.GetOrCreate(c.Context(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Възникна грешка. Моля, опитайте отново.",
			})
		}

		return c.JSON(profile)
	}
}

// UpdateProfile handles PUT /auth/profile
func UpdateProfile(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return err
		}

		var req UpdateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Невалидна заявка.",
			})
		}

		user, err := authService.UpdateProfile(c.Context(), userID, req.DisplayName, req.AvatarURL)
		if err != nil {
			return authError(c, err)
		}

		return c.JSON(toUserResponse(user))
	}
}

// ChangePassword handles PUT /auth/password
func ChangePassword(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return err
		}

		var req ChangePasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Невалидна заявка.",
			})
		}

		if err := authService.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			return authError(c, err)
		}

		return c.JSON(fiber.Map{"success": true})
	}
}

// ChangeEmail handles PUT /auth/email
func ChangeEmail(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return err
		}

		var req ChangeEmailRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Невалидна заявка.",
			})
		}

		user, err := authService.ChangeEmail(c.Context(), userID, req.Password, req.NewEmail)
		if err != nil {
			return authError(c, err)
		}

		return c.JSON(toUserResponse(user))
	}
}
