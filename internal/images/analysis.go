package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/config"
	"github.com/Peblo69/BGman4e/internal/models"
)

const analysisPrompt = `Опиши това изображение на български в едно-две изречения. ` +
	`След описанието добави нов ред, започващ с "Labels:", последван от до 10 ` +
	`етикета на английски, разделени със запетаи.`

// Analyzer produces an ImageAnalysisResult for uploaded images via the
// vision-capable completion API, falling back to a locally built description
// when the API is unavailable.
type Analyzer struct {
	client *openai.Client
	model  string
	log    *logrus.Entry
}

// NewAnalyzer creates an analyzer that shares the chat completion endpoint.
func NewAnalyzer(imagesCfg config.ImagesConfig, chatCfg config.ChatConfig) *Analyzer {
	clientCfg := openai.DefaultConfig(chatCfg.APIKey)
	clientCfg.BaseURL = chatCfg.BaseURL

	return &Analyzer{
		client: openai.NewClientWithConfig(clientCfg),
		model:  imagesCfg.AnalysisModel,
		log:    logrus.WithField("component", "images.analyzer"),
	}
}

// Analyze describes an uploaded image. Never fails: API errors degrade to the
// local fallback result.
func (a *Analyzer) Analyze(ctx context.Context, upload *Upload) *models.ImageAnalysisResult {
	dataURL := "data:" + upload.ContentType + ";base64," + base64.StdEncoding.EncodeToString(upload.Data)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailHigh,
						},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: analysisPrompt,
					},
				},
			},
		},
		MaxTokens: 300,
	})
	if err != nil {
		a.log.WithError(err).Warn("image analysis failed, using local fallback")
		return a.localResult(upload)
	}
	if len(resp.Choices) == 0 {
		return a.localResult(upload)
	}

	description, labels := parseAnalysis(resp.Choices[0].Message.Content)
	if description == "" {
		return a.localResult(upload)
	}

	return &models.ImageAnalysisResult{
		Description: description,
		Labels:      labels,
		Source:      "api",
	}
}

// localResult builds the format/dimension description used when the API
// cannot be reached.
func (a *Analyzer) localResult(upload *Upload) *models.ImageAnalysisResult {
	format := strings.ToUpper(strings.TrimPrefix(upload.ContentType, "image/"))

	description := fmt.Sprintf("Изображение във формат %s", format)
	if upload.Width > 0 && upload.Height > 0 {
		description = fmt.Sprintf("%s с размери %dx%d пиксела", description, upload.Width, upload.Height)
	}
	description += "."

	return &models.ImageAnalysisResult{
		Description: description,
		Labels:      []string{"image", strings.ToLower(format)},
		Source:      "local",
	}
}

// parseAnalysis splits the model's reply into description and label list.
func parseAnalysis(content string) (string, []string) {
	var description strings.Builder
	var labels []string

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "Labels:"); ok {
			for _, label := range strings.Split(rest, ",") {
				if label = strings.TrimSpace(label); label != "" {
					labels = append(labels, strings.ToLower(label))
				}
			}
			continue
		}
		if trimmed != "" {
			if description.Len() > 0 {
				description.WriteString(" ")
			}
			description.WriteString(trimmed)
		}
	}

	return description.String(), labels
}
