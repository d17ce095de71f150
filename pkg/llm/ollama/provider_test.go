package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-askflow-be/pkg/llm"
)

func newTestProvider(handler http.HandlerFunc) (*OllamaProvider, func()) {
	srv := httptest.NewServer(handler)
	return NewOllamaProvider(srv.URL, "test-model"), srv.Close
}

func drain(t *testing.T, deltas <-chan llm.StreamDelta) (string, error) {
	t.Helper()
	var text string
	for d := range deltas {
		if d.Err != nil {
			return text, d.Err
		}
		text += d.Content
	}
	return text, nil
}

func TestChat(t *testing.T) {
	var captured ollamaChatRequest
	provider, stop := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "hello back"},
			Done:    true,
		})
	})
	defer stop()

	out, err := provider.Chat(context.Background(),
		[]llm.Message{{Role: "user", Content: "hello"}},
		llm.WithModel("phi4-mini"),
		llm.WithTemperature(0.2),
	)
	require.NoError(t, err)
	assert.Equal(t, "hello back", out)

	assert.Equal(t, "phi4-mini", captured.Model)
	assert.False(t, captured.Stream)
	assert.Equal(t, 0.2, captured.Options.Temperature)
}

func TestChatNonOKStatus(t *testing.T) {
	provider, stop := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	})
	defer stop()

	_, err := provider.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestChatStream(t *testing.T) {
	var captured ollamaChatRequest
	provider, stop := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "The sky "}})
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "is blue."}})
		enc.Encode(ollamaChatResponse{Done: true})
	})
	defer stop()

	deltas, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "why?"}})
	require.NoError(t, err)

	text, err := drain(t, deltas)
	require.NoError(t, err)
	assert.Equal(t, "The sky is blue.", text)
	assert.True(t, captured.Stream)
}

// A mangled NDJSON line must not end the stream; only its chunk is lost.
func TestChatStreamSkipsMalformedLines(t *testing.T) {
	provider, stop := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "before "}})
		w.Write([]byte("{not json at all\n"))
		w.Write([]byte("\n"))
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "after"}})
		enc.Encode(ollamaChatResponse{Done: true})
	})
	defer stop()

	deltas, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "why?"}})
	require.NoError(t, err)

	text, err := drain(t, deltas)
	require.NoError(t, err)
	assert.Equal(t, "before after", text)
}

// The "model" role is a caller-side convention and must reach Ollama as
// "assistant".
func TestChatMapsModelRole(t *testing.T) {
	var captured ollamaChatRequest
	provider, stop := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	})
	defer stop()

	_, err := provider.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "model", Content: "hello"},
		{Role: "user", Content: "again"},
	})
	require.NoError(t, err)

	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
}

// Cancelling the context mid-stream closes the delta channel instead of
// wedging the reader goroutine.
func TestChatStreamContextCancel(t *testing.T) {
	release := make(chan struct{})
	provider, stop := newTestProvider(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaChatResponse{Message: ollamaMessage{Content: "first"}})
		w.(http.Flusher).Flush()
		<-release
	})
	defer stop()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	deltas, err := provider.ChatStream(ctx, []llm.Message{{Role: "user", Content: "why?"}})
	require.NoError(t, err)

	first := <-deltas
	assert.Equal(t, "first", first.Content)
	cancel()

	select {
	case _, open := <-deltas:
		assert.False(t, open, "channel should close after cancellation")
	case <-time.After(2 * time.Second):
		t.Fatal("delta channel did not close after cancellation")
	}
}
