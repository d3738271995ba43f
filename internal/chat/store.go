package chat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/models"
	"github.com/Peblo69/BGman4e/internal/repository"
)

const (
	sessionCacheTTL      = 60 * time.Second
	userSessionsCacheTTL = 30 * time.Second

	// Per-tier result caps for the list fallback chain.
	indexedListLimit   = 20
	orderedListLimit   = 15
	unorderedListLimit = 10

	defaultSessionTitle = "New Chat"
)

// Store orchestrates chat session persistence. It is the sole owner and sole
// writer of both caches; everything handed out is a copy.
type Store struct {
	repo     repository.SessionRepository
	sessions *ttlCache // session id -> models.ChatSession
	lists    *ttlCache // user id -> []models.ChatSession
	log      *logrus.Entry
}

// NewStore creates a session store. One instance per application lifetime.
func NewStore(repo repository.SessionRepository) *Store {
	return &Store{
		repo:     repo,
		sessions: newTTLCache(sessionCacheTTL),
		lists:    newTTLCache(userSessionsCacheTTL),
		log:      logrus.WithField("component", "chat.store"),
	}
}

// Create sanitizes messages and persists a new session. Returns the new
// session's id.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, messages []models.Message, title string) (string, error) {
	if title == "" {
		title = defaultSessionTitle
	}

	session := &models.ChatSession{
		UserID:   userID,
		Title:    title,
		Messages: SanitizeMessages(messages),
		Deleted:  false,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return "", fmt.Errorf("create chat session: %w", err)
	}

	return session.ID, nil
}

// Update sanitizes and overwrites a session's message list.
func (s *Store) Update(ctx context.Context, sessionID string, messages []models.Message) error {
	sanitized := SanitizeMessages(messages)

	if err := s.repo.UpdateMessages(ctx, sessionID, sanitized); err != nil {
		return fmt.Errorf("update chat session: %w", err)
	}

	s.refreshCachedSession(sessionID, func(session *models.ChatSession) {
		session.Messages = sanitized
	})

	return nil
}

// UpdateTitle overwrites a session's title.
func (s *Store) UpdateTitle(ctx context.Context, sessionID string, title string) error {
	if err := s.repo.UpdateTitle(ctx, sessionID, title); err != nil {
		return fmt.Errorf("update chat session title: %w", err)
	}

	s.refreshCachedSession(sessionID, func(session *models.ChatSession) {
		session.Title = title
	})

	return nil
}

// refreshCachedSession patches the cached copy in place after a successful
// write instead of refetching. The patched updated_at is this process's
// clock, a close approximation of the row's NOW() stamp; the list cache is
// deliberately left alone and serves its copy until its own TTL lapses.
func (s *Store) refreshCachedSession(sessionID string, patch func(*models.ChatSession)) {
	value, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}

	session := value.(models.ChatSession).Clone()
	patch(&session)
	session.UpdatedAt = time.Now()
	s.sessions.Set(sessionID, session)
}

// GetByID returns a session, cache-first. Soft-deleted sessions read as
// absent: nil, nil for both missing and deleted.
func (s *Store) GetByID(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	if value, ok := s.sessions.Get(sessionID); ok {
		session := value.(models.ChatSession).Clone()
		return &session, nil
	}

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get chat session: %w", err)
	}
	if session == nil || session.Deleted {
		return nil, nil
	}

	s.sessions.Set(sessionID, session.Clone())

	result := session.Clone()
	return &result, nil
}

// listStrategy is one tier of the list fallback chain. Each tier returns a
// fully compensated result (live sessions only, most recent first).
type listStrategy struct {
	name string
	run  func(ctx context.Context) ([]models.ChatSession, error)
}

// ListByUser returns the user's live sessions, most recent first, cache-first.
// Storage failures degrade through progressively simpler queries; only when
// every tier fails does the result collapse to an empty list. Never errors.
func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID) []models.ChatSession {
	key := userID.String()
	if value, ok := s.lists.Get(key); ok {
		return copySessions(value.([]models.ChatSession))
	}

	strategies := []listStrategy{
		{
			name: "indexed",
			run: func(ctx context.Context) ([]models.ChatSession, error) {
				return s.repo.ListByUserIndexed(ctx, userID, indexedListLimit)
			},
		},
		{
			name: "ordered",
			run: func(ctx context.Context) ([]models.ChatSession, error) {
				sessions, err := s.repo.ListByUserOrdered(ctx, userID, orderedListLimit)
				if err != nil {
					return nil, err
				}
				return dropDeleted(sessions), nil
			},
		},
		{
			name: "unordered",
			run: func(ctx context.Context) ([]models.ChatSession, error) {
				sessions, err := s.repo.ListByUserUnordered(ctx, userID, unorderedListLimit)
				if err != nil {
					return nil, err
				}
				sessions = dropDeleted(sessions)
				sort.Slice(sessions, func(i, j int) bool {
					return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
				})
				return sessions, nil
			},
		},
	}

	for _, strategy := range strategies {
		sessions, err := strategy.run(ctx)
		if err != nil {
			s.log.WithError(err).WithField("strategy", strategy.name).Warn("session list query failed, degrading")
			continue
		}

		s.lists.Set(key, sessions)
		return copySessions(sessions)
	}

	s.log.WithField("user_id", key).Error("all session list queries failed")
	return []models.ChatSession{}
}

// Delete soft-deletes a session, hard-deleting when the soft delete cannot be
// written. Both caches are purged up front regardless of which path runs.
// Reports success as a bool; deletion is best-effort for callers.
func (s *Store) Delete(ctx context.Context, sessionID string) bool {
	s.sessions.Delete(sessionID)
	s.lists.Mutate(func(value interface{}) interface{} {
		return removeSession(value.([]models.ChatSession), sessionID)
	})

	if err := s.repo.SoftDelete(ctx, sessionID); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("soft delete failed, attempting hard delete")

		if err := s.repo.HardDelete(ctx, sessionID); err != nil {
			s.log.WithError(err).WithField("session_id", sessionID).Error("hard delete failed")
			return false
		}
	}

	return true
}

// ClearCaches drops all cached sessions and lists, e.g. on sign-out.
func (s *Store) ClearCaches() {
	s.sessions.Clear()
	s.lists.Clear()
}

func dropDeleted(sessions []models.ChatSession) []models.ChatSession {
	live := make([]models.ChatSession, 0, len(sessions))
	for _, session := range sessions {
		if !session.Deleted {
			live = append(live, session)
		}
	}
	return live
}

func removeSession(sessions []models.ChatSession, sessionID string) []models.ChatSession {
	filtered := make([]models.ChatSession, 0, len(sessions))
	for _, session := range sessions {
		if session.ID != sessionID {
			filtered = append(filtered, session)
		}
	}
	return filtered
}

func copySessions(sessions []models.ChatSession) []models.ChatSession {
	result := make([]models.ChatSession, len(sessions))
	for i, session := range sessions {
		result[i] = session.Clone()
	}
	return result
}
