package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Peblo69/BGman4e/internal/models"
	"github.com/Peblo69/BGman4e/internal/repository"
)

// ProfileRepository implements repository.ProfileRepository using PostgreSQL
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository creates a new PostgreSQL profile repository
func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOrCreate fetches a user's profile counters, creating the row on first use
func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	query := `
		INSERT INTO user_profiles (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = user_profiles.updated_at
		RETURNING user_id, message_count, image_count, created_at, updated_at
	`

	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}

	return &profile, nil
}

// IncrementMessageCount adds delta to the user's message counter
func (r *ProfileRepository) IncrementMessageCount(ctx context.Context, userID uuid.UUID, delta int) error {
	query := `
		INSERT INTO user_profiles (user_id, message_count)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET message_count = user_profiles.message_count + $2, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, userID, delta)
	return err
}

// IncrementImageCount adds delta to the user's image counter
func (r *ProfileRepository) IncrementImageCount(ctx context.Context, userID uuid.UUID, delta int) error {
	query := `
		INSERT INTO user_profiles (user_id, image_count)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET image_count = user_profiles.image_count + $2, updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, userID, delta)
	return err
}
