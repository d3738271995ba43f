// Package images wraps the image generation and image analysis services and
// owns the transient upload registry.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/config"
	"github.com/Peblo69/BGman4e/internal/moderation"
	"github.com/Peblo69/BGman4e/internal/translate"
)

// ModelConfig is one supported generation model preset.
type ModelConfig struct {
	Model string
	Steps int
}

// ModelConfigs maps display names to generation presets.
var ModelConfigs = map[string]ModelConfig{
	"Rundiffusion X++": {Model: "rundiffusion:130@100", Steps: 33},
}

// ImageSize is a named output resolution.
type ImageSize struct {
	Width  int
	Height int
}

// ImageSizes maps display names to output resolutions.
var ImageSizes = map[string]ImageSize{
	"Square HD": {Width: 1024, Height: 1024},
	"Portrait":  {Width: 832, Height: 1216},
	"Landscape": {Width: 1216, Height: 832},
}

const (
	defaultModel = "Rundiffusion X++"
	defaultSize  = "Square HD"
)

// GenerateParams describes one generation request.
type GenerateParams struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Size   string `json:"size"`
	Steps  int    `json:"steps"`
}

// GenerationResult is the outcome of a generation request.
type GenerationResult struct {
	ImageURL         string `json:"imageURL"`
	IsNSFW           bool   `json:"isNSFW"`
	OriginalPrompt   string `json:"originalPrompt"`
	TranslatedPrompt string `json:"translatedPrompt,omitempty"`
}

// PromptTranslator translates a Bulgarian prompt to English; degraded
// translation returns the input unchanged.
type PromptTranslator interface {
	Translate(ctx context.Context, text string) string
}

// Generator is the image generation API client.
type Generator struct {
	cfg        config.ImagesConfig
	client     *http.Client
	translator PromptTranslator
	log        *logrus.Entry
}

// NewGenerator creates an image generator backed by the configured endpoint.
func NewGenerator(cfg config.ImagesConfig, translator PromptTranslator) *Generator {
	return &Generator{
		cfg:        cfg,
		client:     &http.Client{Timeout: 120 * time.Second},
		translator: translator,
		log:        logrus.WithField("component", "images.generator"),
	}
}

// inferenceTask mirrors the generation API's task envelope: one
// authentication task followed by one inference task.
type authTask struct {
	TaskType string `json:"taskType"`
	APIKey   string `json:"apiKey"`
}

type inferenceTask struct {
	TaskType       string   `json:"taskType"`
	TaskUUID       string   `json:"taskUUID"`
	PositivePrompt string   `json:"positivePrompt"`
	Model          string   `json:"model"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Steps          int      `json:"steps"`
	OutputType     []string `json:"outputType"`
	IncludeCost    bool     `json:"includeCost"`
	CheckNSFW      bool     `json:"checkNSFW"`
}

type generationResponse struct {
	Data []struct {
		ImageURL string `json:"imageURL"`
		NSFW     bool   `json:"nsfw"`
	} `json:"data"`
	Message string `json:"message"`
}

// Generate runs the moderation/translation pre-filter and then requests one
// image. Returns moderation.ErrContentRejected when the prompt (original or
// translated) is disallowed; translation failure alone never blocks
// generation.
func (g *Generator) Generate(ctx context.Context, params GenerateParams) (*GenerationResult, error) {
	modelCfg, ok := ModelConfigs[params.Model]
	if !ok {
		modelCfg = ModelConfigs[defaultModel]
	}
	size, ok := ImageSizes[params.Size]
	if !ok {
		size = ImageSizes[defaultSize]
	}
	steps := params.Steps
	if steps <= 0 {
		steps = modelCfg.Steps
	}

	prompt := params.Prompt
	originalPrompt := prompt

	// Rejected content is never translated and never reaches the paid call
	if err := moderation.Check(prompt); err != nil {
		return nil, err
	}

	var translatedPrompt string
	if translate.IsBulgarian(prompt) {
		if translated := g.translator.Translate(ctx, prompt); translated != "" && translated != prompt {
			if err := moderation.Check(translated); err != nil {
				return nil, err
			}
			translatedPrompt = translated
			prompt = translated
			g.log.WithFields(logrus.Fields{
				"original":   originalPrompt,
				"translated": translated,
			}).Debug("prompt translated for generation")
		}
	}

	payload := []interface{}{
		authTask{TaskType: "authentication", APIKey: g.cfg.APIKey},
		inferenceTask{
			TaskType:       "imageInference",
			TaskUUID:       uuid.New().String(),
			PositivePrompt: prompt,
			Model:          modelCfg.Model,
			Width:          size.Width,
			Height:         size.Height,
			Steps:          steps,
			OutputType:     []string{"URL"},
			IncludeCost:    true,
			CheckNSFW:      true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image generation request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read generation response: %w", err)
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || len(decoded.Data) == 0 {
		if decoded.Message != "" {
			return nil, fmt.Errorf("image generation failed: %s", decoded.Message)
		}
		return nil, fmt.Errorf("image generation failed with status %d", resp.StatusCode)
	}

	result := &GenerationResult{
		ImageURL:         decoded.Data[0].ImageURL,
		IsNSFW:           decoded.Data[0].NSFW,
		OriginalPrompt:   originalPrompt,
		TranslatedPrompt: translatedPrompt,
	}

	if result.IsNSFW {
		g.log.Info("generated image flagged as NSFW by the API")
	}

	return result, nil
}
