package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Peblo69/BGman4e/internal/config"
	"github.com/Peblo69/BGman4e/internal/models"
)

type streamResult struct {
	chunks    []string
	errors    []string
	completes int
}

func (r *streamResult) callbacks() StreamCallbacks {
	return StreamCallbacks{
		OnChunk:    func(text string) { r.chunks = append(r.chunks, text) },
		OnError:    func(message string) { r.errors = append(r.errors, message) },
		OnComplete: func() { r.completes++ },
	}
}

func (r *streamResult) content() string {
	return strings.Join(r.chunks, "")
}

func sseServer(t *testing.T, lines []string, capture *[]byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		if capture != nil {
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			*capture = body
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
		}
	}))
}

func deltaLine(t *testing.T, content string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"delta": map[string]string{"content": content}},
		},
	})
	require.NoError(t, err)
	return "data: " + string(payload)
}

func testChatConfig(baseURL string) config.ChatConfig {
	return config.ChatConfig{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "test-model",
		Referer:     "https://example.com",
		Title:       "Test",
		Temperature: 0.8,
		MaxTokens:   4000,
	}
}

func TestStreamChat_DeliversChunksThenCompletes(t *testing.T) {
	srv := sseServer(t, []string{
		deltaLine(t, "Здравей"),
		deltaLine(t, "! Как си?"),
		"data: [DONE]",
	}, nil)
	defer srv.Close()

	var result streamResult
	NewStreamer(testChatConfig(srv.URL), nil).StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUserMessage, Content: "ой"},
	}, result.callbacks())

	assert.Equal(t, "Здравей! Как си?", result.content())
	assert.Equal(t, 1, result.completes)
	assert.Empty(t, result.errors)
}

func TestStreamChat_LongBulgarianDeltaReassemblesExactly(t *testing.T) {
	content := "Здравей! Аз съм БулгарГПТ и мога да ти помогна с всякакви въпроси на български език."
	srv := sseServer(t, []string{deltaLine(t, content), "data: [DONE]"}, nil)
	defer srv.Close()

	var result streamResult
	NewStreamer(testChatConfig(srv.URL), nil).StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUserMessage, Content: "здравей"},
	}, result.callbacks())

	// The fragment is re-chunked for smoothing but never altered
	assert.Greater(t, len(result.chunks), 1)
	assert.Equal(t, content, result.content())
	assert.Equal(t, 1, result.completes)
}

func TestStreamChat_HeartbeatsIgnored(t *testing.T) {
	srv := sseServer(t, []string{
		"data: ping",
		deltaLine(t, "ok"),
		"data: keepalive",
		"data: [DONE]",
	}, nil)
	defer srv.Close()

	var result streamResult
	NewStreamer(testChatConfig(srv.URL), nil).StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUserMessage, Content: "hi"},
	}, result.callbacks())

	assert.Equal(t, []string{"ok"}, result.chunks)
	assert.Equal(t, 1, result.completes)
	assert.Empty(t, result.errors)
}

func TestStreamChat_NothingAfterDone(t *testing.T) {
	srv := sseServer(t, []string{
		deltaLine(t, "first"),
		"data: [DONE]",
		deltaLine(t, "after the end"),
	}, nil)
	defer srv.Close()

	var result streamResult
	NewStreamer(testChatConfig(srv.URL), nil).StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUserMessage, Content: "hi"},
	}, result.callbacks())

	assert.Equal(t, []string{"first"}, result.chunks)
	assert.Equal(t, 1, result.completes)
	assert.Empty(t, result.errors)
}

func TestStreamChat_EOFWithoutDoneIsError(t *testing.T) {
	srv := sseServer(t, []string{deltaLine(t, "partial")}, nil)
	defer srv.Close()

	var result streamResult
	NewStreamer(testChatConfig(srv.URL), nil).StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUserMessage, Content: "hi"},
	}, result.callbacks())

	assert.Equal(t, []string{"partial"}, result.chunks)
	assert.Zero(t, result.completes)
	assert.Equal(t, []string{errMsgIncomplete}, result.errors)
}

func TestStreamChat_UpstreamRejectionIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var result streamResult
	NewStreamer(testChatConfig(srv.URL), nil).StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUserMessage, Content: "hi"},
	}, result.callbacks())

	assert.Empty(t, result.chunks)
	assert.Zero(t, result.completes)
	assert.Equal(t, []string{errMsgConnect}, result.errors)
}

func TestStreamChat_ConnectFailureIsSingleError(t *testing.T) {
	var result streamResult
	NewStreamer(testChatConfig("http://127.0.0.1:1"), nil).StreamChat(context.Background(), []models.Message{
		{Role: models.RoleUserMessage, Content: "hi"},
	}, result.callbacks())

	assert.Zero(t, result.completes)
	assert.Equal(t, []string{errMsgConnect}, result.errors)
}

func TestStreamChat_RequestEncoding(t *testing.T) {
	var captured []byte
	srv := sseServer(t, []string{"data: [DONE]"}, &captured)
	defer srv.Close()

	messages := []models.Message{
		{Role: models.RoleUserMessage, Content: "text only"},
		{
			Role:    models.RoleUserMessage,
			Content: "what is this?",
			Images: []models.ImageAttachment{
				{ID: "img1", URL: "https://example.com/cat.png"},
			},
		},
	}

	var result streamResult
	NewStreamer(testChatConfig(srv.URL), nil).StreamChat(context.Background(), messages, result.callbacks())
	require.Equal(t, 1, result.completes)

	var req struct {
		Model    string            `json:"model"`
		Stream   bool              `json:"stream"`
		Messages []json.RawMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(captured, &req))
	assert.Equal(t, "test-model", req.Model)
	assert.True(t, req.Stream)
	require.Len(t, req.Messages, 3) // system prompt + two user messages

	// Attachment-free message keeps bare string content
	var plain struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(req.Messages[1], &plain))
	assert.Equal(t, "text only", plain.Content)

	// Message with images becomes a part list, image parts first
	var typed struct {
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL    string `json:"url"`
				Detail string `json:"detail"`
			} `json:"image_url"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(req.Messages[2], &typed))
	require.Len(t, typed.Content, 2)
	assert.Equal(t, "image_url", typed.Content[0].Type)
	assert.Equal(t, "https://example.com/cat.png", typed.Content[0].ImageURL.URL)
	assert.Equal(t, "high", typed.Content[0].ImageURL.Detail)
	assert.Equal(t, "text", typed.Content[1].Type)
	assert.Equal(t, "what is this?", typed.Content[1].Text)
}

type stubResolver struct {
	resolved map[string]string
}

func (r *stubResolver) Resolve(_ context.Context, url string) (string, error) {
	if data, ok := r.resolved[url]; ok {
		return data, nil
	}
	return "", fmt.Errorf("unknown reference %s", url)
}

func TestStreamChat_TransientAttachmentResolved(t *testing.T) {
	var captured []byte
	srv := sseServer(t, []string{"data: [DONE]"}, &captured)
	defer srv.Close()

	resolver := &stubResolver{resolved: map[string]string{
		"local://abc": "data:image/png;base64,AAAA",
	}}

	messages := []models.Message{
		{
			Role:    models.RoleUserMessage,
			Content: "see attached",
			Images: []models.ImageAttachment{
				{ID: "a", URL: "local://abc"},
				{ID: "b", URL: "local://missing"}, // unresolvable, skipped
			},
		},
	}

	var result streamResult
	NewStreamer(testChatConfig(srv.URL), resolver).StreamChat(context.Background(), messages, result.callbacks())
	require.Equal(t, 1, result.completes)

	body := string(captured)
	assert.Contains(t, body, "data:image/png;base64,AAAA")
	assert.NotContains(t, body, "local://")
}

func TestStreamChat_CancelAbortsStream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "%s\n\n", deltaLine(t, "Здравей"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// Hold the stream open until the client gives up
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var result streamResult
	cb := result.callbacks()
	onChunk := cb.OnChunk
	cb.OnChunk = func(text string) {
		onChunk(text)
		cancel()
	}

	streamer := NewStreamer(testChatConfig(srv.URL), nil)
	streamer.StreamChat(ctx, []models.Message{{Role: models.RoleUserMessage, Content: "здравей"}}, cb)

	// The aborted stream surfaces exactly one error and never completes
	assert.Len(t, result.errors, 1)
	assert.Zero(t, result.completes)
}
