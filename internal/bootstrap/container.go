package bootstrap

import (
	"context"
	"errors"
	"log"
	"time"

	"omni-backend/internal/config"
	"omni-backend/internal/controller"
	"omni-backend/internal/pkg/logger"
	"omni-backend/internal/service"
	"omni-backend/pkg/database"
	"omni-backend/pkg/embedding"
	embeddingCache "omni-backend/pkg/embedding/cache"
	embeddingFactory "omni-backend/pkg/embedding/factory"
	"omni-backend/pkg/events"
	"omni-backend/pkg/llm"
	llmFactory "omni-backend/pkg/llm/factory"
	pktNats "omni-backend/pkg/nats"
	"omni-backend/pkg/rag"
	"omni-backend/pkg/vectorstore"
	"omni-backend/pkg/vectorstore/memory"
	"omni-backend/pkg/vectorstore/pgvector"
	"omni-backend/pkg/workflow"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatController   controller.IChatController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

// Retrieval groups what both the API and the ingest tool need from the vector side.
type Retrieval struct {
	Pipeline *rag.Pipeline
	Ingestor *rag.Ingestor
	closers  []func()
}

func (r *Retrieval) Close() {
	for _, c := range r.closers {
		c()
	}
}

func NewLogger(cfg *config.Config) logger.ILogger {
	return logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction(), cfg.App.Debug)
}

func NewContainer(cfg *config.Config) *Container {
	sysLogger := NewLogger(cfg)

	// 1. Generation boundary
	llmProvider, err := llmFactory.NewLLMProvider(llmFactory.Config{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		BaseURL:       cfg.Ai.LLMBaseURL,
		APIKey:        cfg.Keys.HuggingFace,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		Timeout:       time.Duration(cfg.Ai.TimeoutSec) * time.Second,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	if cfg.Keys.HuggingFace == "" && cfg.Ai.LLMProvider != "ollama" {
		sysLogger.Warn("BOOTSTRAP", "HF_API_TOKEN is not set, chat requests will fail", nil)
	}
	sysLogger.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	llmClient := llm.NewClient(llmProvider,
		llm.WithLogger(sysLogger),
		llm.WithMaxAttempts(cfg.Ai.MaxRetries),
		llm.WithRetryBackoff(time.Duration(cfg.Ai.RetryBackoffMs)*time.Millisecond),
		llm.WithHardMaxTokens(cfg.Ai.HardMaxNewTokens),
		llm.WithMaxConcurrency(cfg.Ai.MaxConcurrency),
	)

	// 2. Retrieval boundary
	retrieval := NewRetrieval(cfg, sysLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := retrieval.Pipeline.EnsureCollections(ctx); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Vector collections are not ready", map[string]interface{}{
			"error": err.Error(),
		})
	}
	cancel()

	// 3. Event Bus
	var watermillLogger watermill.LoggerAdapter = watermill.NopLogger{}
	if cfg.App.Debug {
		watermillLogger = watermill.NewStdLogger(false, false)
	}
	bus := events.NewBus(watermillLogger)

	var forwarder events.Publisher
	closers := append([]func(){}, retrieval.closers...)
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS, events stay in process", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			forwarder = natsPub
			closers = append(closers, natsPub.Close)
		}
	}
	closers = append(closers, func() { _ = bus.Close() })

	// 4. Workflow
	orchestrator := workflow.New(
		workflow.DefaultStages(llmClient, retrieval.Pipeline),
		workflow.WithPublisher(bus),
		workflow.WithLogger(sysLogger),
	)

	// 5. Services
	chatService := service.NewChatService(orchestrator, sysLogger)
	consumerService := service.NewConsumerService(bus, forwarder, sysLogger)

	return &Container{
		Logger:           sysLogger,
		ChatController:   controller.NewChatController(chatService),
		HealthController: controller.NewHealthController(cfg.App.Environment, cfg.App.Debug),
		ConsumerService:  consumerService,
		closers:          closers,
	}
}

func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// NewRetrieval builds the embedding provider, the vector store and the retrieval pipeline.
// Missing infrastructure never aborts startup; the affected calls fail instead.
func NewRetrieval(cfg *config.Config, sysLogger logger.ILogger) *Retrieval {
	r := &Retrieval{}

	embedder, err := embeddingFactory.NewEmbeddingProvider(embeddingFactory.Config{
		Provider:      cfg.Ai.EmbeddingProvider,
		Model:         cfg.Ai.EmbeddingModel,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		JinaAPIKey:    cfg.Keys.Jina,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		Timeout:       time.Duration(cfg.Ai.TimeoutSec) * time.Second,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	sysLogger.Info("BOOTSTRAP", "Embedding provider ready", map[string]interface{}{
		"provider": cfg.Ai.EmbeddingProvider,
	})

	rdb := newRedis(cfg.App.RedisURL, sysLogger)
	if rdb != nil {
		r.closers = append(r.closers, func() { _ = rdb.Close() })
	}
	var cached embedding.Provider = embeddingCache.NewCachedProvider(
		embedder,
		cfg.Ai.EmbeddingProvider+"/"+cfg.Ai.EmbeddingModel,
		time.Duration(cfg.Ai.EmbeddingCacheSec)*time.Second,
		rdb,
		sysLogger,
	)

	store := newVectorStore(cfg, sysLogger)

	r.Pipeline = rag.NewPipeline(cached, store, rag.Config{
		GeneralCollection:  cfg.Rag.GeneralCollection,
		PersonalCollection: cfg.Rag.PersonalCollection,
		EmbeddingDim:       cfg.Rag.EmbeddingDim,
		TopK:               cfg.Rag.TopK,
		IncludePersonal:    cfg.Rag.IncludePersonal,
	}, sysLogger)
	r.Ingestor = rag.NewIngestor(cached, store, cfg.Rag.EmbeddingDim, sysLogger)
	return r
}

func newVectorStore(cfg *config.Config, sysLogger logger.ILogger) vectorstore.VectorStore {
	if cfg.Rag.VectorStore == "memory" {
		sysLogger.Warn("BOOTSTRAP", "Using in-memory vector store, data is lost on restart", nil)
		return memory.NewStore()
	}

	if cfg.Database.Connection == "" {
		sysLogger.Warn("BOOTSTRAP", "DB_CONNECTION_STRING is not set, retrieval is disabled", nil)
		return vectorstore.Unavailable{Cause: errors.New("DB_CONNECTION_STRING is not set")}
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Debug)
	if err != nil {
		sysLogger.Error("BOOTSTRAP", "Unable to connect to vector database", map[string]interface{}{
			"error": err.Error(),
		})
		return vectorstore.Unavailable{Cause: err}
	}
	return pgvector.NewStore(db)
}

func newRedis(url string, sysLogger logger.ILogger) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		sysLogger.Warn("BOOTSTRAP", "Redis unreachable, embedding cache stays in process", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return nil
	}
	return rdb
}
