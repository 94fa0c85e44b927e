package factory

import (
	"fmt"
	"strings"
	"time"

	"omni-backend/pkg/embedding"
	"omni-backend/pkg/embedding/jina"
)

type Config struct {
	Provider      string // "ollama", "jina" or "gemini"
	Model         string // Ollama model; Jina and Gemini use their own defaults
	OllamaBaseURL string
	JinaAPIKey    string
	GeminiAPIKey  string
	Timeout       time.Duration
}

func NewEmbeddingProvider(cfg Config) (embedding.Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "ollama":
		return embedding.NewOllamaProvider(cfg.OllamaBaseURL, cfg.Model, cfg.Timeout), nil
	case "jina":
		return jina.NewJinaProvider(cfg.JinaAPIKey, "", "", cfg.Timeout), nil
	case "gemini":
		return embedding.NewGeminiProvider(cfg.GeminiAPIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
