package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peblo69/BGman4e/internal/models"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))
	return buf.Bytes()
}

func TestRegistry_AddProbesDimensions(t *testing.T) {
	registry := NewRegistry()

	attachment, err := registry.Add("cat.png", "image/png", pngBytes(t, 12, 34))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(attachment.URL, models.LocalURLPrefix))
	assert.Equal(t, 12, attachment.Width)
	assert.Equal(t, 34, attachment.Height)
	assert.Equal(t, "cat.png", attachment.Filename)
}

func TestRegistry_AddRejectsUnsupportedType(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Add("doc.pdf", "application/pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestRegistry_AddRejectsOversized(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Add("big.png", "image/png", make([]byte, MaxUploadSize+1))
	assert.ErrorIs(t, err, ErrUploadTooLarge)
}

func TestRegistry_ResolveProducesDataURL(t *testing.T) {
	registry := NewRegistry()
	data := pngBytes(t, 1, 1)

	attachment, err := registry.Add("a.png", "image/png", data)
	require.NoError(t, err)

	dataURL, err := registry.Resolve(context.Background(), attachment.URL)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(data), dataURL)
}

func TestRegistry_ResolveUnknownFails(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Resolve(context.Background(), models.LocalURLPrefix+"nope")
	assert.ErrorIs(t, err, ErrUploadNotFound)
}

func TestRegistry_ReleaseMessages(t *testing.T) {
	registry := NewRegistry()

	kept, err := registry.Add("keep.png", "image/png", pngBytes(t, 1, 1))
	require.NoError(t, err)
	sent, err := registry.Add("sent.png", "image/png", pngBytes(t, 1, 1))
	require.NoError(t, err)

	registry.ReleaseMessages([]models.Message{
		{
			Role: models.RoleUserMessage,
			Images: []models.ImageAttachment{
				{ID: sent.ID, URL: sent.URL},
				{ID: "external", URL: "https://example.com/x.png"}, // durable, untouched
			},
		},
	})

	_, err = registry.Get(sent.ID)
	assert.ErrorIs(t, err, ErrUploadNotFound)
	_, err = registry.Get(kept.ID)
	assert.NoError(t, err)
}

func TestRegistry_ReleaseAll(t *testing.T) {
	registry := NewRegistry()
	attachment, err := registry.Add("a.png", "image/png", pngBytes(t, 1, 1))
	require.NoError(t, err)

	registry.ReleaseAll()

	_, err = registry.Get(attachment.ID)
	assert.ErrorIs(t, err, ErrUploadNotFound)
}
