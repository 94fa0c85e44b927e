package factory

import (
	"fmt"
	"strings"
	"time"

	"omni-backend/pkg/llm"
	"omni-backend/pkg/llm/huggingface"
	"omni-backend/pkg/llm/ollama"
)

type Config struct {
	Provider      string // "huggingface" or "ollama"
	Model         string
	BaseURL       string
	APIKey        string
	OllamaBaseURL string
	Timeout       time.Duration
}

func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "huggingface", "hf":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = cfg.OllamaBaseURL
		}
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
