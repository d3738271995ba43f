package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Peblo69/BGman4e/internal/api/middleware"
	"github.com/Peblo69/BGman4e/internal/auth"
	"github.com/Peblo69/BGman4e/internal/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	User         *UserResponse `json:"user"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int           `json:"expires_in"`
}

// SignupRequest represents a signup request
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse represents a token refresh response
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ForgotPasswordRequest represents a password reset email request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents a password reset confirmation
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		CreatedAt:   user.CreatedAt,
	}
}

// authErrorStatus maps auth errors to HTTP status codes
func authErrorStatus(err error) int {
	switch err {
	case auth.ErrInvalidCredentials, auth.ErrInvalidToken, auth.ErrExpiredToken,
		auth.ErrSessionNotFound, auth.ErrSessionExpired, auth.ErrRequiresRecentLogin:
		return fiber.StatusUnauthorized
	case auth.ErrUserInactive:
		return fiber.StatusForbidden
	case auth.ErrEmailAlreadyExists:
		return fiber.StatusConflict
	case auth.ErrInvalidEmail, auth.ErrMissingEmail, auth.ErrMissingPassword,
		auth.ErrPasswordTooShort, auth.ErrPasswordTooWeak, auth.ErrResetTokenInvalid:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func authError(c *fiber.Ctx, err error) error {
	return c.Status(authErrorStatus(err)).JSON(fiber.Map{
		"error": auth.LocalizedMessage(err),
	})
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(auth.AccessTokenTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  time.Now().Add(auth.RefreshTokenTTL),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Strict",
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	c.Cookie(&fiber.Cookie{Name: "access_token", Value: "", Expires: expired, HTTPOnly: true})
	c.Cookie(&fiber.Cookie{Name: "refresh_token", Value: "", Expires: expired, HTTPOnly: true})
}

// Login handles POST /auth/login
func Login(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Невалидна заявка.",
			})
		}

		user, accessToken, refreshToken, err := authService.Login(
			c.Context(), req.Email, req.Password, c.IP(), c.Get("User-Agent"),
		)
		if err != nil {
			return authError(c, err)
		}

		setAuthCookies(c, accessToken, refreshToken)

		return c.JSON(LoginResponse{
			User:         toUserResponse(user),
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(auth.AccessTokenTTL.Seconds()),
		})
	}
}

// Signup handles POST /auth/signup. Registers the user and logs them in.
func Signup(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SignupRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Невалидна заявка.",
			})
		}

		user, err := authService.SignUp(c.Context(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			return authError(c, err)
		}

		_, accessToken, refreshToken, err := authService.Login(
			c.Context(), req.Email, req.Password, c.IP(), c.Get("User-Agent"),
		)
		if err != nil {
			// User exists, they can log in manually
			return c.Status(fiber.StatusCreated).JSON(fiber.Map{
				"user": toUserResponse(user),
			})
		}

		setAuthCookies(c, accessToken, refreshToken)

		return c.Status(fiber.StatusCreated).JSON(LoginResponse{
			User:         toUserResponse(user),
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(auth.AccessTokenTTL.Seconds()),
		})
	}
}

// Refresh handles POST /auth/refresh
func Refresh(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RefreshRequest
		if err := c.BodyParser(&req); err == nil && req.RefreshToken != "" {
			// from body
		} else {
			req.RefreshToken = c.Cookies("refresh_token")
		}

		if req.RefreshToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Невалидна заявка.",
			})
		}

		accessToken, refreshToken, err := authService.RefreshToken(c.Context(), req.RefreshToken)
		if err != nil {
			return authError(c, err)
		}

		setAuthCookies(c, accessToken, refreshToken)

		return c.JSON(RefreshResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(auth.AccessTokenTTL.Seconds()),
		})
	}
}

// Logout handles POST /auth/logout
func Logout(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sessionID, ok := c.Locals("session_id").(string); ok && sessionID != "" {
			if err := authService.Logout(c.Context(), sessionID); err != nil {
				return authError(c, err)
			}
		}

		clearAuthCookies(c)
		return c.JSON(fiber.Map{"success": true})
	}
}

// Me handles GET /auth/me
func Me(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := middleware.GetUserID(c)
		if err != nil {
			return err
		}

		user, err := authService.GetUser(c.Context(), userID)
		if err != nil {
			return authError(c, err)
		}

		return c.JSON(toUserResponse(user))
	}
}

// ForgotPassword handles POST /auth/reset. Always returns success so that
// registered emails cannot be probed.
func ForgotPassword(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ForgotPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Невалидна заявка.",
			})
		}

		if err := authService.SendPasswordReset(c.Context(), req.Email); err != nil {
			if err == auth.ErrMissingEmail || err == auth.ErrInvalidEmail {
				return authError(c, err)
			}
			// Deliberately opaque
		}

		return c.JSON(fiber.Map{"success": true})
	}
}

// ResetPassword handles POST /auth/reset/confirm
func ResetPassword(authService *auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req ResetPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Невалидна заявка.",
			})
		}

		if err := authService.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
			return authError(c, err)
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
