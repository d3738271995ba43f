package images

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peblo69/BGman4e/internal/config"
	"github.com/Peblo69/BGman4e/internal/moderation"
)

// recordingTranslator counts calls and returns a canned translation.
type recordingTranslator struct {
	calls  int
	result string
}

func (r *recordingTranslator) Translate(_ context.Context, text string) string {
	r.calls++
	if r.result != "" {
		return r.result
	}
	return text
}

func generationServer(t *testing.T, imageURL string, nsfw bool, capture *[]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			*capture = body
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"imageURL": imageURL, "nsfw": nsfw},
			},
		})
	}))
}

func TestGenerate_EnglishPrompt(t *testing.T) {
	var captured []byte
	srv := generationServer(t, "https://cdn.example.com/img.png", false, &captured)
	defer srv.Close()

	translator := &recordingTranslator{}
	gen := NewGenerator(config.ImagesConfig{BaseURL: srv.URL, APIKey: "rw-key"}, translator)

	result, err := gen.Generate(context.Background(), GenerateParams{Prompt: "a cat wearing a hat"})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/img.png", result.ImageURL)
	assert.False(t, result.IsNSFW)
	assert.Equal(t, "a cat wearing a hat", result.OriginalPrompt)
	assert.Empty(t, result.TranslatedPrompt)
	assert.Zero(t, translator.calls)

	// Two-task payload: authentication first, inference second
	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(captured, &tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "authentication", tasks[0]["taskType"])
	assert.Equal(t, "rw-key", tasks[0]["apiKey"])
	assert.Equal(t, "imageInference", tasks[1]["taskType"])
	assert.Equal(t, "a cat wearing a hat", tasks[1]["positivePrompt"])
	assert.Equal(t, "rundiffusion:130@100", tasks[1]["model"])
	assert.Equal(t, float64(1024), tasks[1]["width"])
	assert.Equal(t, float64(33), tasks[1]["steps"])
	assert.Equal(t, true, tasks[1]["checkNSFW"])
	assert.NotEmpty(t, tasks[1]["taskUUID"])
}

func TestGenerate_BulgarianPromptTranslated(t *testing.T) {
	var captured []byte
	srv := generationServer(t, "https://cdn.example.com/img.png", false, &captured)
	defer srv.Close()

	translator := &recordingTranslator{result: "a cat wearing a hat"}
	gen := NewGenerator(config.ImagesConfig{BaseURL: srv.URL, APIKey: "k"}, translator)

	result, err := gen.Generate(context.Background(), GenerateParams{Prompt: "котка с шапка"})
	require.NoError(t, err)

	assert.Equal(t, 1, translator.calls)
	assert.Equal(t, "котка с шапка", result.OriginalPrompt)
	assert.Equal(t, "a cat wearing a hat", result.TranslatedPrompt)

	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(captured, &tasks))
	assert.Equal(t, "a cat wearing a hat", tasks[1]["positivePrompt"])
}

func TestGenerate_RejectionPrecedesTranslation(t *testing.T) {
	srv := generationServer(t, "https://cdn.example.com/img.png", false, nil)
	defer srv.Close()

	translator := &recordingTranslator{}
	gen := NewGenerator(config.ImagesConfig{BaseURL: srv.URL, APIKey: "k"}, translator)

	_, err := gen.Generate(context.Background(), GenerateParams{Prompt: "нарисувай порно"})
	assert.ErrorIs(t, err, moderation.ErrContentRejected)
	assert.Zero(t, translator.calls)
}

func TestGenerate_TranslatedTextRechecked(t *testing.T) {
	srv := generationServer(t, "https://cdn.example.com/img.png", false, nil)
	defer srv.Close()

	// Innocent Bulgarian prompt whose translation trips the English list
	translator := &recordingTranslator{result: "naked cat"}
	gen := NewGenerator(config.ImagesConfig{BaseURL: srv.URL, APIKey: "k"}, translator)

	_, err := gen.Generate(context.Background(), GenerateParams{Prompt: "котка без козина"})
	assert.ErrorIs(t, err, moderation.ErrContentRejected)
}

func TestGenerate_NSFWFlagSurfaced(t *testing.T) {
	srv := generationServer(t, "https://cdn.example.com/img.png", true, nil)
	defer srv.Close()

	gen := NewGenerator(config.ImagesConfig{BaseURL: srv.URL, APIKey: "k"}, &recordingTranslator{})

	result, err := gen.Generate(context.Background(), GenerateParams{Prompt: "a forest"})
	require.NoError(t, err)
	assert.True(t, result.IsNSFW)
}

func TestGenerate_UpstreamErrorMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "invalid api key"})
	}))
	defer srv.Close()

	gen := NewGenerator(config.ImagesConfig{BaseURL: srv.URL, APIKey: "bad"}, &recordingTranslator{})

	_, err := gen.Generate(context.Background(), GenerateParams{Prompt: "a forest"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestGenerate_NamedSizeSelected(t *testing.T) {
	var captured []byte
	srv := generationServer(t, "u", false, &captured)
	defer srv.Close()

	gen := NewGenerator(config.ImagesConfig{BaseURL: srv.URL, APIKey: "k"}, &recordingTranslator{})

	_, err := gen.Generate(context.Background(), GenerateParams{Prompt: "a forest", Size: "Portrait", Steps: 20})
	require.NoError(t, err)

	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(captured, &tasks))
	assert.Equal(t, float64(832), tasks[1]["width"])
	assert.Equal(t, float64(1216), tasks[1]["height"])
	assert.Equal(t, float64(20), tasks[1]["steps"])
}
