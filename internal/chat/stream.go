package chat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/config"
	"github.com/Peblo69/BGman4e/internal/models"
)

const (
	// doneToken is the literal success terminator on the event stream.
	doneToken = "[DONE]"

	// maxEventSize bounds a single SSE event line.
	maxEventSize = 1 << 20
)

// User-facing failure messages. Upstream detail goes to the log, not the UI.
const (
	errMsgConnect    = "Грешка при свързване с услугата"
	errMsgIncomplete = "Неуспешно получаване на отговор"
)

// StreamCallbacks receives the stream consumer's output. OnChunk fires zero
// or more times in arrival order; afterwards exactly one of OnComplete or
// OnError fires, never both.
type StreamCallbacks struct {
	OnChunk    func(text string)
	OnError    func(message string)
	OnComplete func()
}

// AttachmentResolver turns a transient local reference into a self-contained
// encoding (a data URL) that the completion endpoint can dereference.
type AttachmentResolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

// Streamer consumes the completion API's event stream.
type Streamer struct {
	cfg      config.ChatConfig
	client   *http.Client
	resolver AttachmentResolver
	log      *logrus.Entry
}

// NewStreamer creates a new stream consumer. resolver may be nil when no
// transient attachments can occur (tests, CLI tooling).
func NewStreamer(cfg config.ChatConfig, resolver AttachmentResolver) *Streamer {
	return &Streamer{
		cfg:      cfg,
		client:   &http.Client{}, // no client timeout, streams are long-lived
		resolver: resolver,
		log:      logrus.WithField("component", "chat.streamer"),
	}
}

// apiMessage is one entry of the outbound message list. Content is either a
// bare string (text-only message) or a []contentPart (message with images);
// encodeMessage picks the variant, call sites never branch on it.
type apiMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imagePartURL `json:"image_url,omitempty"`
}

type imagePartURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail"`
}

type completionRequest struct {
	Model             string       `json:"model"`
	Messages          []apiMessage `json:"messages"`
	Stream            bool         `json:"stream"`
	Temperature       float64      `json:"temperature"`
	MaxTokens         int          `json:"max_tokens"`
	TopP              float64      `json:"top_p"`
	FrequencyPenalty  float64      `json:"frequency_penalty"`
	PresencePenalty   float64      `json:"presence_penalty"`
	RepetitionPenalty float64      `json:"repetition_penalty"`
	TopK              int          `json:"top_k"`
}

// deltaEnvelope is the provider's per-event payload.
type deltaEnvelope struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// tryParseEnvelope decodes a single event payload. ok=false means the event
// is not a delta envelope (a heartbeat or comment) and must be ignored, not
// treated as an error.
func tryParseEnvelope(raw string) (deltaEnvelope, bool) {
	var env deltaEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return deltaEnvelope{}, false
	}
	return env, true
}

// StreamChat opens one streaming completion request for the given history and
// feeds the callbacks. Cancelling ctx aborts the underlying connection and
// surfaces a single OnError.
func (s *Streamer) StreamChat(ctx context.Context, messages []models.Message, cb StreamCallbacks) {
	var terminated bool
	fail := func(message string) {
		if terminated {
			return
		}
		terminated = true
		cb.OnError(message)
	}
	complete := func() {
		if terminated {
			return
		}
		terminated = true
		cb.OnComplete()
	}

	apiMessages := make([]apiMessage, 0, len(messages)+1)
	apiMessages = append(apiMessages, apiMessage{Role: "system", Content: systemPrompt})
	for _, msg := range messages {
		apiMessages = append(apiMessages, s.encodeMessage(ctx, msg))
	}

	body, err := json.Marshal(completionRequest{
		Model:             s.cfg.Model,
		Messages:          apiMessages,
		Stream:            true,
		Temperature:       s.cfg.Temperature,
		MaxTokens:         s.cfg.MaxTokens,
		TopP:              s.cfg.TopP,
		FrequencyPenalty:  s.cfg.FrequencyPenalty,
		PresencePenalty:   s.cfg.PresencePenalty,
		RepetitionPenalty: s.cfg.RepetitionPenalty,
		TopK:              s.cfg.TopK,
	})
	if err != nil {
		fail(errMsgIncomplete)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		fail(errMsgConnect)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("HTTP-Referer", s.cfg.Referer)
	req.Header.Set("X-Title", s.cfg.Title)

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log.WithError(err).Warn("completion request failed")
		fail(errMsgConnect)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(detail),
		}).Warn("completion endpoint rejected request")
		fail(errMsgConnect)
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		if data == doneToken {
			s.log.WithField("elapsed", time.Since(start)).Debug("stream completed")
			complete()
			return
		}

		env, ok := tryParseEnvelope(data)
		if !ok {
			// Heartbeat, nothing to deliver
			continue
		}
		if len(env.Choices) == 0 {
			continue
		}
		if content := env.Choices[0].Delta.Content; content != "" {
			emitSmoothed(content, cb.OnChunk)
		}
	}

	if err := scanner.Err(); err != nil {
		s.log.WithError(err).Warn("stream read failed")
		fail(errMsgConnect)
		return
	}

	// Stream ended without the [DONE] terminator
	fail(errMsgIncomplete)
}

// encodeMessage serializes one message for the API. Attachment-free messages
// keep the compact bare-string content the upstream validates for; messages
// with images become a typed part list, image parts first, text part last.
func (s *Streamer) encodeMessage(ctx context.Context, msg models.Message) apiMessage {
	if !msg.HasImages() {
		return apiMessage{Role: msg.Role, Content: msg.Content}
	}

	parts := make([]contentPart, 0, len(msg.Images)+1)
	for _, img := range msg.Images {
		url, err := s.resolveImageURL(ctx, img.URL)
		if err != nil {
			// A single unresolvable attachment drops out of the request
			// rather than sinking the whole exchange.
			s.log.WithError(err).WithField("attachment", img.ID).Warn("skipping unresolvable attachment")
			continue
		}
		parts = append(parts, contentPart{
			Type:     "image_url",
			ImageURL: &imagePartURL{URL: url, Detail: "high"},
		})
	}
	parts = append(parts, contentPart{Type: "text", Text: msg.Content})

	return apiMessage{Role: msg.Role, Content: parts}
}

// resolveImageURL passes durable references through unchanged and resolves
// transient local references to inline data URLs, one at a time.
func (s *Streamer) resolveImageURL(ctx context.Context, url string) (string, error) {
	if !models.IsTransientURL(url) {
		return url, nil
	}
	if s.resolver == nil {
		return "", fmt.Errorf("no resolver for transient reference %s", url)
	}
	return s.resolver.Resolve(ctx, url)
}
