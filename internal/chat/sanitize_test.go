package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Peblo69/BGman4e/internal/models"
)

func TestSanitizeMessage_CopiesWhitelistedFields(t *testing.T) {
	ts := time.Now()
	msg := models.Message{
		ID:        "m1",
		Content:   "hello",
		Role:      models.RoleUserMessage,
		Timestamp: ts,
	}

	clean := SanitizeMessage(msg)

	assert.Equal(t, "m1", clean.ID)
	assert.Equal(t, "hello", clean.Content)
	assert.Equal(t, models.RoleUserMessage, clean.Role)
	assert.Equal(t, ts, clean.Timestamp)
	assert.Nil(t, clean.Images)
}

func TestSanitizeAttachment_OptionalFieldsOmitted(t *testing.T) {
	clean := SanitizeAttachment(models.ImageAttachment{
		ID:          "img1",
		URL:         "https://example.com/a.png",
		Filename:    "a.png",
		ContentType: "image/png",
		Size:        1234,
	})

	assert.Empty(t, clean.ThumbnailURL)
	assert.Zero(t, clean.Width)
	assert.Zero(t, clean.Height)
	assert.Nil(t, clean.AnalysisResult)
}

func TestSanitizeAttachment_LabelsCappedAndFiltered(t *testing.T) {
	labels := make([]string, 0, 30)
	labels = append(labels, "")
	for i := 0; i < 29; i++ {
		labels = append(labels, "label")
	}

	clean := SanitizeAttachment(models.ImageAttachment{
		ID: "img1",
		AnalysisResult: &models.ImageAnalysisResult{
			Description: "desc",
			Labels:      labels,
			Source:      "api",
		},
	})

	assert.NotNil(t, clean.AnalysisResult)
	assert.Len(t, clean.AnalysisResult.Labels, maxAnalysisLabels)
	assert.NotContains(t, clean.AnalysisResult.Labels, "")
	assert.Equal(t, "api", clean.AnalysisResult.Source)
}

func TestSanitizeAttachment_EmptyLabelsDefault(t *testing.T) {
	clean := SanitizeAttachment(models.ImageAttachment{
		ID: "img1",
		AnalysisResult: &models.ImageAnalysisResult{
			Description: "desc",
		},
	})

	assert.Equal(t, []string{"image"}, clean.AnalysisResult.Labels)
	assert.Equal(t, "local", clean.AnalysisResult.Source)
}

func TestSanitizeMessages_Idempotent(t *testing.T) {
	messages := []models.Message{
		{
			ID:      "m1",
			Content: "with image",
			Role:    models.RoleUserMessage,
			Images: []models.ImageAttachment{
				{
					ID:     "img1",
					URL:    "local://abc",
					Width:  100,
					Height: 200,
					AnalysisResult: &models.ImageAnalysisResult{
						Description: "a cat",
						Labels:      []string{"cat", ""},
						Source:      "api",
					},
				},
			},
		},
		{ID: "m2", Content: "plain", Role: models.RoleAssistantMessage},
	}

	once := SanitizeMessages(messages)
	twice := SanitizeMessages(once)

	assert.Equal(t, once, twice)
}

func TestSanitizeMessages_DoesNotModifyInput(t *testing.T) {
	messages := []models.Message{
		{
			ID: "m1",
			Images: []models.ImageAttachment{
				{ID: "img1", AnalysisResult: &models.ImageAnalysisResult{Labels: []string{""}}},
			},
		},
	}

	SanitizeMessages(messages)

	assert.Equal(t, []string{""}, messages[0].Images[0].AnalysisResult.Labels)
}
