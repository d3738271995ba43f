package chat

import (
	"github.com/Peblo69/BGman4e/internal/models"
)

// maxAnalysisLabels caps the label list persisted with an attachment.
const maxAnalysisLabels = 20

// SanitizeMessages returns a deep copy of messages containing only the
// whitelisted, serializable fields. Idempotent and side-effect free; the
// input is never modified.
func SanitizeMessages(messages []models.Message) models.Messages {
	sanitized := make(models.Messages, len(messages))
	for i, message := range messages {
		sanitized[i] = SanitizeMessage(message)
	}
	return sanitized
}

// SanitizeMessage copies the whitelisted fields of a single message.
func SanitizeMessage(message models.Message) models.Message {
	clean := models.Message{
		ID:        message.ID,
		Content:   message.Content,
		Role:      message.Role,
		Timestamp: message.Timestamp,
	}

	if len(message.Images) > 0 {
		clean.Images = make([]models.ImageAttachment, len(message.Images))
		for i, img := range message.Images {
			clean.Images[i] = SanitizeAttachment(img)
		}
	}

	return clean
}

// SanitizeAttachment copies the whitelisted fields of an attachment,
// omitting optional fields that are absent and capping the label list.
func SanitizeAttachment(image models.ImageAttachment) models.ImageAttachment {
	clean := models.ImageAttachment{
		ID:          image.ID,
		URL:         image.URL,
		Filename:    image.Filename,
		ContentType: image.ContentType,
		Size:        image.Size,
	}

	if image.ThumbnailURL != "" {
		clean.ThumbnailURL = image.ThumbnailURL
	}
	if image.Width > 0 {
		clean.Width = image.Width
	}
	if image.Height > 0 {
		clean.Height = image.Height
	}

	if image.AnalysisResult != nil {
		result := &models.ImageAnalysisResult{
			Description: image.AnalysisResult.Description,
			Source:      image.AnalysisResult.Source,
		}
		if result.Source == "" {
			result.Source = "local"
		}

		labels := make([]string, 0, len(image.AnalysisResult.Labels))
		for _, label := range image.AnalysisResult.Labels {
			if label == "" {
				continue
			}
			labels = append(labels, label)
			if len(labels) == maxAnalysisLabels {
				break
			}
		}
		if len(labels) == 0 {
			labels = []string{"image"}
		}
		result.Labels = labels

		clean.AnalysisResult = result
	}

	return clean
}
