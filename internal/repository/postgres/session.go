package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Peblo69/BGman4e/internal/models"
	"github.com/Peblo69/BGman4e/internal/repository"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new PostgreSQL session repository
func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new chat session
func (r *SessionRepository) Create(ctx context.Context, session *models.ChatSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt

	query := `
		INSERT INTO chat_sessions (id, user_id, title, messages, deleted, created_at, updated_at)
		VALUES (:id, :user_id, :title, :messages, :deleted, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, session)
	return err
}

// Get retrieves a chat session by ID, including soft-deleted ones.
// Returns nil without error when the session does not exist.
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.ChatSession, error) {
	var session models.ChatSession
	query := `
		SELECT id, user_id, title, messages, deleted, created_at, updated_at
		FROM chat_sessions
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &session, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

// UpdateMessages overwrites the message list and bumps updated_at
func (r *SessionRepository) UpdateMessages(ctx context.Context, id string, messages models.Messages) error {
	query := `UPDATE chat_sessions SET messages = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, messages)
	return err
}

// UpdateTitle overwrites the title and bumps updated_at
func (r *SessionRepository) UpdateTitle(ctx context.Context, id string, title string) error {
	query := `UPDATE chat_sessions SET title = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, title)
	return err
}

// SoftDelete marks a session as deleted without removing the row
func (r *SessionRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE chat_sessions SET deleted = TRUE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// HardDelete physically removes a session row
func (r *SessionRepository) HardDelete(ctx context.Context, id string) error {
	query := `DELETE FROM chat_sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// List queries return session headers only; the message list is left empty
// because the sidebar never needs it.
const listColumns = `id, user_id, title, '[]'::jsonb AS messages, deleted, created_at, updated_at`

// ListByUserIndexed is the preferred list query: live sessions only, most
// recent first. Relies on the composite (user_id, deleted, updated_at) index.
func (r *SessionRepository) ListByUserIndexed(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	query := `
		SELECT ` + listColumns + `
		FROM chat_sessions
		WHERE user_id = $1 AND deleted = FALSE
		ORDER BY updated_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &sessions, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// ListByUserOrdered drops the deleted filter; callers filter client-side
func (r *SessionRepository) ListByUserOrdered(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	query := `
		SELECT ` + listColumns + `
		FROM chat_sessions
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &sessions, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

// ListByUserUnordered drops ordering too; callers filter and sort client-side
func (r *SessionRepository) ListByUserUnordered(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	query := `
		SELECT ` + listColumns + `
		FROM chat_sessions
		WHERE user_id = $1
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &sessions, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}
