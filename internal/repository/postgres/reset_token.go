package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Peblo69/BGman4e/internal/models"
	"github.com/Peblo69/BGman4e/internal/repository"
)

// ResetTokenRepository implements repository.ResetTokenRepository using PostgreSQL
type ResetTokenRepository struct {
	db *sqlx.DB
}

// NewResetTokenRepository creates a new PostgreSQL reset token repository
func NewResetTokenRepository(db *sqlx.DB) repository.ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create creates a new password reset token
func (r *ResetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES (:id, :user_id, :token_hash, :expires_at, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, token)
	return err
}

// GetByTokenHash retrieves a reset token by its hash
func (r *ResetTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	query := `SELECT * FROM password_reset_tokens WHERE token_hash = $1`

	if err := r.db.GetContext(ctx, &token, query, tokenHash); err != nil {
		return nil, err
	}

	return &token, nil
}

// MarkUsed stamps a reset token as consumed
func (r *ResetTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE password_reset_tokens SET used_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
