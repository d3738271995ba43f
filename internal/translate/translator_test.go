package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peblo69/BGman4e/internal/config"
)

func TestIsBulgarian(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"empty", "", false},
		{"english", "a cat wearing a hat", false},
		{"bulgarian", "котка с шапка", true},
		{"mostly latin with one cyrillic", "hello there д", false},
		{"mixed above threshold", "котка cat котка", true},
		{"numbers only", "12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBulgarian(tt.text))
		})
	}
}

// primaryResponse builds the nested-array payload the primary endpoint
// answers with.
func primaryResponse(t *testing.T, translated string) []byte {
	t.Helper()
	payload, err := json.Marshal([]interface{}{
		[][]interface{}{{translated, "оригинал", nil, nil}},
	})
	require.NoError(t, err)
	return payload
}

func newTestTranslator(primaryURL, secondaryURL string) *Translator {
	tr := NewTranslator(config.TranslateConfig{
		PrimaryURL:   primaryURL,
		SecondaryURL: secondaryURL,
	})
	tr.retryDelay = time.Millisecond
	return tr
}

func TestTranslate_NonBulgarianPassesThrough(t *testing.T) {
	tr := newTestTranslator("http://127.0.0.1:1", "http://127.0.0.1:1")
	assert.Equal(t, "a cat", tr.Translate(context.Background(), "a cat"))
}

func TestTranslate_Primary(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "gtx", r.URL.Query().Get("client"))
		assert.Equal(t, "bg", r.URL.Query().Get("sl"))
		assert.Equal(t, "en", r.URL.Query().Get("tl"))
		w.Write(primaryResponse(t, "a cat wearing a hat"))
	}))
	defer srv.Close()

	tr := newTestTranslator(srv.URL, "http://127.0.0.1:1")
	result := tr.Translate(context.Background(), "котка с шапка")
	assert.Equal(t, "a cat wearing a hat", result)
	assert.Equal(t, 1, calls)
}

func TestTranslate_ResultCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(primaryResponse(t, "a cat wearing a hat"))
	}))
	defer srv.Close()

	tr := newTestTranslator(srv.URL, "http://127.0.0.1:1")
	tr.Translate(context.Background(), "котка с шапка")
	tr.Translate(context.Background(), "котка с шапка")
	assert.Equal(t, 1, calls)
}

func TestTranslate_SecondaryRetryAcceptedOnlyIfLonger(t *testing.T) {
	tests := []struct {
		name      string
		secondary string
		expected  string
	}{
		{"longer retry wins", "a big cat wearing a hat", "a big cat wearing a hat"},
		{"shorter retry discarded", "cat", "cat hat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Short enough to look incomplete against the long input
				w.Write(primaryResponse(t, "cat hat"))
			}))
			defer primary.Close()

			secondary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "dict-chrome-ex", r.URL.Query().Get("client"))
				payload, err := json.Marshal([]interface{}{tt.secondary})
				require.NoError(t, err)
				w.Write(payload)
			}))
			defer secondary.Close()

			tr := newTestTranslator(primary.URL, secondary.URL)
			result := tr.Translate(context.Background(), "една голяма котка с голяма шапка на главата")
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTranslate_TotalFailureReturnsOriginal(t *testing.T) {
	tr := newTestTranslator("http://127.0.0.1:1", "http://127.0.0.1:1")
	original := "котка с шапка и ботуши"
	assert.Equal(t, original, tr.Translate(context.Background(), original))
}

func TestTranslate_ChunkedSequentially(t *testing.T) {
	var received []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = append(received, r.URL.Query().Get("q"))
		w.Write(primaryResponse(t, strings.Repeat("translated sentence here and more words again. ", 30)))
	}))
	defer srv.Close()

	sentence := "Това е едно изречение на български език за превод. "
	long := strings.Repeat(sentence, 40) // well past one chunk

	tr := newTestTranslator(srv.URL, "http://127.0.0.1:1")
	result := tr.Translate(context.Background(), long)

	assert.NotEqual(t, long, result)
	require.Greater(t, len(received), 1)
	for _, chunk := range received {
		assert.LessOrEqual(t, len([]rune(chunk)), maxChunkSize)
		// Chunks cut on sentence boundaries
		assert.True(t, strings.HasSuffix(strings.TrimSpace(chunk), "."),
			fmt.Sprintf("chunk does not end on a sentence: %q", chunk))
	}
}

func TestSplitChunks_ShortTextSingleChunk(t *testing.T) {
	chunks := splitChunks("кратък текст", maxChunkSize)
	assert.Equal(t, []string{"кратък текст"}, chunks)
}

func TestLooksIncomplete(t *testing.T) {
	assert.True(t, looksIncomplete("оригинал", ""))
	assert.True(t, looksIncomplete("оригинал", "оригинал"))
	assert.True(t, looksIncomplete("a very long original input text", "short"))
	assert.False(t, looksIncomplete("котка", "a cat"))
}
