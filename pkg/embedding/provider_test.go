package embedding

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	v := NormalizeVector([]float32{3, 4})
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, NormalizeVector(zero))
}

func TestCheckDimension(t *testing.T) {
	assert.NoError(t, CheckDimension([][]float32{{1, 2, 3}}, 3))
	assert.Error(t, CheckDimension([][]float32{{1, 2, 3}, {1, 2}}, 3))
	assert.NoError(t, CheckDimension(nil, 384))
}

func TestOllamaEmbedNormalizesAndKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Prompt == "a" {
			_, _ = w.Write([]byte(`{"embedding":[2,0]}`))
			return
		}
		_, _ = w.Write([]byte(`{"embedding":[0,5]}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "all-minilm", time.Second)
	vectors, err := p.Embed(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1}, vectors[1])
	for _, v := range vectors {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)
	}
}

func TestOllamaEmbedEmptyInput(t *testing.T) {
	p := NewOllamaProvider("http://127.0.0.1:1", "", time.Second)
	vectors, err := p.Embed(context.Background(), []string{})
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestGeminiWithoutKey(t *testing.T) {
	p := NewGeminiProvider("", time.Second)
	_, err := p.Embed(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}
