package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	Debug              bool
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	HuggingFace  string
	Jina         string
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider       string // "huggingface" or "ollama"
	LLMModel          string
	LLMBaseURL        string
	MaxRetries        int
	TimeoutSec        int
	RetryBackoffMs    int
	HardMaxNewTokens  int
	MaxConcurrency    int
	EmbeddingProvider string // "ollama", "jina" or "gemini"
	OllamaBaseURL     string
	EmbeddingModel    string
	EmbeddingCacheSec int
}

type RagConfig struct {
	VectorStore        string // "pgvector" or "memory"
	GeneralCollection  string
	PersonalCollection string
	EmbeddingDim       int
	TopK               int
	IncludePersonal    bool
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", getEnv("PORT", "8000")),
			Environment:        getFirstEnv([]string{"ENV", "GO_ENV"}, "local"),
			Debug:              getEnvAsBool("DEBUG", false),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/omni.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			HuggingFace:  getFirstEnv([]string{"HF_API_TOKEN", "HF_TOKEN", "HF_API_KEY"}, ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "huggingface"),
			LLMModel:          getEnv("LLM_MODEL", "meta-llama/Llama-3.1-8B-Instruct"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			MaxRetries:        getEnvAsInt("LLM_MAX_RETRIES", 3),
			TimeoutSec:        getEnvAsInt("LLM_TIMEOUT_SEC", 60),
			RetryBackoffMs:    getEnvAsInt("LLM_RETRY_BACKOFF_MS", 1000),
			HardMaxNewTokens:  getEnvAsInt("LLM_HARD_MAX_TOKENS", 32),
			MaxConcurrency:    getEnvAsInt("LLM_MAX_CONCURRENCY", 1),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL_NAME", "all-minilm"),
			EmbeddingCacheSec: getEnvAsInt("EMBEDDING_CACHE_TTL_SEC", 3600),
		},
		Rag: RagConfig{
			VectorStore:        getEnv("VECTOR_STORE", "pgvector"),
			GeneralCollection:  getEnv("QDRANT_GENERAL_COLLECTION", "general_docs"),
			PersonalCollection: getEnv("QDRANT_PERSONAL_COLLECTION", "personal_knowledge"),
			EmbeddingDim:       getEnvAsInt("EMBEDDING_DIM", 384),
			TopK:               getEnvAsInt("RAG_TOP_K", 5),
			IncludePersonal:    getEnvAsBool("RAG_INCLUDE_PERSONAL", true),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getFirstEnv returns the first non-empty value among keys.
func getFirstEnv(keys []string, fallback string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	return strings.EqualFold(strValue, "true") || strValue == "1"
}
