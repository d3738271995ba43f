// Package translate detects Bulgarian text and translates it to English for
// the image generation service, which only understands English prompts.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/Peblo69/BGman4e/internal/config"
)

const (
	// cyrillicRatio is the share of Cyrillic runes above which text is
	// classified as Bulgarian.
	cyrillicRatio = 0.4

	// maxChunkSize bounds one translation request, preferring sentence
	// boundaries when splitting.
	maxChunkSize = 1000

	requestTimeout = 10 * time.Second
)

// IsBulgarian reports whether text is primarily Bulgarian, by Cyrillic rune
// ratio.
func IsBulgarian(text string) bool {
	if text == "" {
		return false
	}

	cyrillic := 0
	for _, r := range text {
		if (r >= 0x0400 && r <= 0x04FF) || (r >= 0x0500 && r <= 0x052F) {
			cyrillic++
		}
	}

	return float64(cyrillic) > float64(utf8.RuneCountInString(text))*cyrillicRatio
}

// Translator translates Bulgarian text to English through a primary endpoint
// with one bounded retry through a secondary endpoint. Translation failure is
// never fatal; callers always get usable text back.
type Translator struct {
	cfg    config.TranslateConfig
	client *http.Client
	log    *logrus.Entry

	mu    sync.Mutex
	cache map[string]string

	retryDelay time.Duration
}

// NewTranslator creates a translator for the configured endpoints.
func NewTranslator(cfg config.TranslateConfig) *Translator {
	return &Translator{
		cfg:        cfg,
		client:     &http.Client{Timeout: requestTimeout},
		log:        logrus.WithField("component", "translate"),
		cache:      make(map[string]string),
		retryDelay: 500 * time.Millisecond,
	}
}

// Translate returns the English rendition of text when it is Bulgarian, and
// the text unchanged otherwise. A degraded or failed translation falls back
// to the original text.
func (t *Translator) Translate(ctx context.Context, text string) string {
	if text == "" || !IsBulgarian(text) {
		return text
	}

	t.mu.Lock()
	cached, ok := t.cache[text]
	t.mu.Unlock()
	if ok {
		return cached
	}

	translated := t.translateChunked(ctx, text)

	// Empty, unchanged, or suspiciously short output signals a failed or
	// partial translation; retry once through the secondary endpoint.
	if looksIncomplete(text, translated) {
		t.log.WithField("len", len(translated)).Debug("translation looks incomplete, retrying via secondary endpoint")

		select {
		case <-time.After(t.retryDelay):
		case <-ctx.Done():
			return fallback(text, translated)
		}

		if retry, err := t.translateSecondary(ctx, text); err != nil {
			t.log.WithError(err).Warn("secondary translation failed")
		} else if len(retry) > len(translated) {
			translated = retry
		}
	}

	if translated == "" {
		return text
	}

	t.mu.Lock()
	t.cache[text] = translated
	t.mu.Unlock()

	return translated
}

// translateChunked splits text into bounded chunks and translates them
// sequentially through the primary endpoint.
func (t *Translator) translateChunked(ctx context.Context, text string) string {
	chunks := splitChunks(text, maxChunkSize)

	translated := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		result, err := t.translatePrimary(ctx, chunk)
		if err != nil {
			t.log.WithError(err).Warn("primary translation failed")
			return ""
		}
		translated = append(translated, result)
	}

	return strings.Join(translated, " ")
}

// translatePrimary calls the primary endpoint, which answers with nested
// arrays of translated segments.
func (t *Translator) translatePrimary(ctx context.Context, text string) (string, error) {
	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "bg")
	query.Set("tl", "en")
	query.Set("dt", "t")
	query.Set("q", text)

	body, err := t.get(ctx, t.cfg.PrimaryURL+"?"+query.Encode())
	if err != nil {
		return "", err
	}

	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode translation: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation payload")
	}

	var segments [][]interface{}
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("decode translation segments: %w", err)
	}

	var result strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		if part, ok := segment[0].(string); ok {
			result.WriteString(part)
		}
	}

	return result.String(), nil
}

// translateSecondary calls the secondary endpoint, whose response is a flat
// array with the translation first.
func (t *Translator) translateSecondary(ctx context.Context, text string) (string, error) {
	query := url.Values{}
	query.Set("client", "dict-chrome-ex")
	query.Set("sl", "bg")
	query.Set("tl", "en")
	query.Set("q", text)

	body, err := t.get(ctx, t.cfg.SecondaryURL+"?"+query.Encode())
	if err != nil {
		return "", err
	}

	var payload []interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode secondary translation: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty secondary translation")
	}
	if result, ok := payload[0].(string); ok {
		return result, nil
	}

	return "", fmt.Errorf("unexpected secondary translation shape")
}

func (t *Translator) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,bg;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translation endpoint returned %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// looksIncomplete flags empty, unchanged, or less-than-half-length output.
func looksIncomplete(original, translated string) bool {
	return translated == "" ||
		translated == original ||
		len(translated) < len(original)/2
}

func fallback(original, translated string) string {
	if translated == "" {
		return original
	}
	return translated
}

// splitChunks splits text into chunks of at most maxSize runes, cutting on
// sentence boundaries when it can.
func splitChunks(text string, maxSize int) []string {
	if utf8.RuneCountInString(text) <= maxSize {
		return []string{text}
	}

	sentences := splitSentences(text)

	var chunks []string
	var current strings.Builder
	for _, sentence := range sentences {
		if current.Len() > 0 && utf8.RuneCountInString(current.String())+utf8.RuneCountInString(sentence) > maxSize {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(strings.TrimSpace(sentence))
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitSentences cuts text after sentence-ending punctuation followed by
// whitespace.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && runes[i+1] == ' ' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}

	return sentences
}
