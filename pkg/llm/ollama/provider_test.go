package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"omni-backend/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMapsOptions(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"ok"},"done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3", time.Second)
	out, err := p.Chat(context.Background(), llm.BuildMessages("s", "u"), llm.WithMaxTokens(8))

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	require.NotNil(t, got.Options)
	assert.Equal(t, 8, got.Options.NumPredict)
	assert.InDelta(t, llm.DefaultTemperature, got.Options.Temperature, 1e-9)
	assert.Empty(t, got.Format)

	_, err = p.Chat(context.Background(), llm.BuildMessages("s", "u"), llm.WithJSONOutput())
	require.NoError(t, err)
	assert.Equal(t, "json", got.Format)
}

func TestChatReportsStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing", time.Second)
	_, err := p.Chat(context.Background(), llm.BuildMessages("s", "u"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
