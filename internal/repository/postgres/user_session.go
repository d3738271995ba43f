package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Peblo69/BGman4e/internal/models"
	"github.com/Peblo69/BGman4e/internal/repository"
)

// UserSessionRepository implements repository.UserSessionRepository using PostgreSQL
type UserSessionRepository struct {
	db *sqlx.DB
}

// NewUserSessionRepository creates a new PostgreSQL user session repository
func NewUserSessionRepository(db *sqlx.DB) repository.UserSessionRepository {
	return &UserSessionRepository{db: db}
}

// Create creates a new login session
func (r *UserSessionRepository) Create(ctx context.Context, session *models.UserSession) error {
	query := `
		INSERT INTO user_sessions (id, user_id, token_hash, refresh_token_hash, expires_at,
			refresh_expires_at, ip_address, user_agent, created_at, last_activity)
		VALUES (:id, :user_id, :token_hash, :refresh_token_hash, :expires_at,
			:refresh_expires_at, :ip_address, :user_agent, :created_at, :last_activity)
	`

	_, err := r.db.NamedExecContext(ctx, query, session)
	return err
}

// GetByID retrieves a login session by ID
func (r *UserSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.UserSession, error) {
	var session models.UserSession
	query := `SELECT * FROM user_sessions WHERE id = $1`

	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}

	return &session, nil
}

// Update updates a login session
func (r *UserSessionRepository) Update(ctx context.Context, session *models.UserSession) error {
	query := `
		UPDATE user_sessions
		SET token_hash = :token_hash, refresh_token_hash = :refresh_token_hash,
			expires_at = :expires_at, refresh_expires_at = :refresh_expires_at,
			last_activity = :last_activity, revoked_at = :revoked_at
		WHERE id = :id
	`

	_, err := r.db.NamedExecContext(ctx, query, session)
	return err
}

// DeleteExpired removes sessions past their refresh expiry
func (r *UserSessionRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM user_sessions WHERE refresh_expires_at < NOW()`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// DeleteUserSessions removes all sessions for a user
func (r *UserSessionRepository) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM user_sessions WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
