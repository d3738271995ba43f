package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageRole constants
const (
	RoleUserMessage      = "user"
	RoleAssistantMessage = "assistant"
)

// LocalURLPrefix marks a transient reference into the upload registry.
// Such references are browser-session scoped and must be resolved to a
// durable encoding before leaving the process.
const LocalURLPrefix = "local://"

// IsTransientURL reports whether url points at a transient local upload
func IsTransientURL(url string) bool {
	return strings.HasPrefix(url, LocalURLPrefix)
}

// ImageAnalysisResult holds the description of an uploaded image, produced
// either by the vision API or by the local fallback.
type ImageAnalysisResult struct {
	Description string   `json:"description,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	Source      string   `json:"source,omitempty"` // "api" or "local"
}

// ImageAttachment is an image bound to a message. URL may be a durable remote
// reference or a transient local://<id> reference into the upload registry;
// transient references must never reach storage or the completion API as-is.
type ImageAttachment struct {
	ID             string               `json:"id"`
	URL            string               `json:"url"`
	ThumbnailURL   string               `json:"thumbnailUrl,omitempty"`
	Width          int                  `json:"width,omitempty"`
	Height         int                  `json:"height,omitempty"`
	Filename       string               `json:"filename"`
	ContentType    string               `json:"contentType"`
	Size           int64                `json:"size"`
	AnalysisResult *ImageAnalysisResult `json:"analysisResult,omitempty"`
}

// Message is a single chat message. Immutable once appended to a session,
// except the assistant message under active streaming.
type Message struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Role      string            `json:"role"`
	Timestamp time.Time         `json:"timestamp"`
	Images    []ImageAttachment `json:"images,omitempty"`
}

// HasImages reports whether the message carries any attachments.
func (m Message) HasImages() bool {
	return len(m.Images) > 0
}

// Clone returns a deep copy sharing no mutable state with the receiver.
func (m Message) Clone() Message {
	clone := m
	if m.Images != nil {
		clone.Images = make([]ImageAttachment, len(m.Images))
		for i, img := range m.Images {
			clone.Images[i] = img
			if img.AnalysisResult != nil {
				analysis := *img.AnalysisResult
				analysis.Labels = append([]string(nil), img.AnalysisResult.Labels...)
				clone.Images[i].AnalysisResult = &analysis
			}
		}
	}
	return clone
}

// Messages is the JSONB-backed message list of a session.
type Messages []Message

// Clone deep-copies the list.
func (ms Messages) Clone() Messages {
	if ms == nil {
		return nil
	}
	clone := make(Messages, len(ms))
	for i, m := range ms {
		clone[i] = m.Clone()
	}
	return clone
}

// Value implements driver.Valuer for Messages
func (m Messages) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(Messages{})
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for Messages
func (m *Messages) Scan(value interface{}) error {
	if value == nil {
		*m = Messages{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Messages", value)
	}

	return json.Unmarshal(bytes, m)
}

// ChatSession is a persisted conversation owned by one user.
type ChatSession struct {
	ID        string    `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Messages  Messages  `json:"messages" db:"messages"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
	Deleted   bool      `json:"-" db:"deleted"`
}

// Clone returns a deep copy, so callers can mutate the message list without
// reaching whoever else holds the original.
func (s ChatSession) Clone() ChatSession {
	clone := s
	clone.Messages = s.Messages.Clone()
	return clone
}

// UserProfile carries the per-user usage counters shown on the profile page.
type UserProfile struct {
	UserID       uuid.UUID `json:"userId" db:"user_id"`
	MessageCount int       `json:"messageCount" db:"message_count"`
	ImageCount   int       `json:"imageCount" db:"image_count"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
