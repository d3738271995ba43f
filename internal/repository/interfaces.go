package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Peblo69/BGman4e/internal/models"
)

// SessionRepository defines chat session storage operations.
//
// The three List variants are the storage side of the tiered list fallback:
// Indexed is the preferred owner+live+recency query, Ordered drops the live
// filter, Unordered drops ordering too. Callers are expected to try them in
// that order and compensate client-side.
type SessionRepository interface {
	Create(ctx context.Context, session *models.ChatSession) error
	Get(ctx context.Context, id string) (*models.ChatSession, error)
	UpdateMessages(ctx context.Context, id string, messages models.Messages) error
	UpdateTitle(ctx context.Context, id string, title string) error
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	ListByUserIndexed(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatSession, error)
	ListByUserOrdered(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatSession, error)
	ListByUserUnordered(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatSession, error)
}

// UserRepository defines user storage operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error
}

// UserSessionRepository defines login session storage operations
type UserSessionRepository interface {
	Create(ctx context.Context, session *models.UserSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error)
	Update(ctx context.Context, session *models.UserSession) error
	DeleteExpired(ctx context.Context) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
}

// ResetTokenRepository defines password reset token storage operations
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}

// ProfileRepository defines per-user counter storage operations
type ProfileRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	IncrementMessageCount(ctx context.Context, userID uuid.UUID, delta int) error
	IncrementImageCount(ctx context.Context, userID uuid.UUID, delta int) error
}
