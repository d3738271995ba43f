package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // dimension probing
	_ "image/jpeg" // dimension probing
	_ "image/png"  // dimension probing
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/models"
)

// MaxUploadSize caps a single image upload at 10MB.
const MaxUploadSize = 10 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var (
	ErrUnsupportedType = fmt.Errorf("неподдържан формат на файла, поддържани формати: JPEG, PNG, GIF, WEBP")
	ErrUploadTooLarge  = fmt.Errorf("файлът е твърде голям, максимален размер: 10MB")
	ErrUploadNotFound  = fmt.Errorf("upload not found")
)

// Upload is one transient in-memory image awaiting send.
type Upload struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	Width       int
	Height      int
	CreatedAt   time.Time
}

// Registry owns transient uploads. Every Add must be paired with a release:
// explicit removal, successful send, or session teardown all funnel through
// Release/ReleaseAll, so a handle never outlives its last referencing path.
type Registry struct {
	mu      sync.Mutex
	uploads map[string]*Upload
	log     *logrus.Entry
}

// NewRegistry creates an empty upload registry.
func NewRegistry() *Registry {
	return &Registry{
		uploads: make(map[string]*Upload),
		log:     logrus.WithField("component", "images.uploads"),
	}
}

// Add validates and registers an uploaded image, returning the attachment
// projection with a transient local:// reference.
func (r *Registry) Add(filename, contentType string, data []byte) (*models.ImageAttachment, error) {
	if !allowedImageTypes[contentType] {
		return nil, ErrUnsupportedType
	}
	if int64(len(data)) > MaxUploadSize {
		return nil, ErrUploadTooLarge
	}

	upload := &Upload{
		ID:          uuid.New().String(),
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}

	// Best effort; WEBP and corrupt files keep zero dimensions
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		upload.Width = cfg.Width
		upload.Height = cfg.Height
	}

	r.mu.Lock()
	r.uploads[upload.ID] = upload
	r.mu.Unlock()

	return &models.ImageAttachment{
		ID:          upload.ID,
		URL:         models.LocalURLPrefix + upload.ID,
		Width:       upload.Width,
		Height:      upload.Height,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Get returns a registered upload.
func (r *Registry) Get(id string) (*Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	upload, ok := r.uploads[id]
	if !ok {
		return nil, ErrUploadNotFound
	}
	return upload, nil
}

// Resolve implements chat.AttachmentResolver: a transient local:// reference
// becomes a self-contained data URL.
func (r *Registry) Resolve(_ context.Context, url string) (string, error) {
	id := strings.TrimPrefix(url, models.LocalURLPrefix)

	upload, err := r.Get(id)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", url, err)
	}

	return "data:" + upload.ContentType + ";base64," + base64.StdEncoding.EncodeToString(upload.Data), nil
}

// Release frees one upload. Releasing an unknown id is a no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.uploads, id)
}

// ReleaseMessages frees every transient upload referenced by the given
// messages, called after a successful send.
func (r *Registry) ReleaseMessages(messages []models.Message) {
	for _, message := range messages {
		for _, img := range message.Images {
			if models.IsTransientURL(img.URL) {
				r.Release(strings.TrimPrefix(img.URL, models.LocalURLPrefix))
			}
		}
	}
}

// ReleaseAll frees everything, e.g. on sign-out or client teardown.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.uploads) > 0 {
		r.log.WithField("count", len(r.uploads)).Debug("releasing transient uploads")
	}
	r.uploads = make(map[string]*Upload)
}
