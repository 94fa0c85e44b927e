package factory

import (
	"testing"

	"omni-backend/pkg/embedding"
	"omni-backend/pkg/embedding/jina"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingProvider(t *testing.T) {
	p, err := NewEmbeddingProvider(Config{Provider: "ollama", Model: "all-minilm"})
	require.NoError(t, err)
	assert.IsType(t, &embedding.OllamaProvider{}, p)

	p, err = NewEmbeddingProvider(Config{Provider: "JINA", JinaAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &jina.JinaProvider{}, p)

	p, err = NewEmbeddingProvider(Config{Provider: "gemini"})
	require.NoError(t, err)
	assert.IsType(t, &embedding.GeminiProvider{}, p)

	_, err = NewEmbeddingProvider(Config{Provider: "fasttext"})
	assert.Error(t, err)
}
