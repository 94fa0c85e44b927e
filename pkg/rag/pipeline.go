package rag

import (
	"context"
	"errors"
	"fmt"

	"omni-backend/internal/pkg/logger"
	"omni-backend/pkg/embedding"
	"omni-backend/pkg/vectorstore"
)

type Config struct {
	GeneralCollection  string
	PersonalCollection string
	EmbeddingDim       int
	TopK               int
	IncludePersonal    bool
}

func (c Config) withDefaults() Config {
	if c.GeneralCollection == "" {
		c.GeneralCollection = "general_docs"
	}
	if c.PersonalCollection == "" {
		c.PersonalCollection = "personal_knowledge"
	}
	if c.EmbeddingDim <= 0 {
		c.EmbeddingDim = 384
	}
	if c.TopK <= 0 {
		c.TopK = 5
	}
	return c
}

// RunOptions overrides per call. Plan is accepted for future filtering and is not used yet.
type RunOptions struct {
	TopK            int
	IncludePersonal *bool
	Plan            any
}

// Pipeline embeds a query, searches the configured collections and merges the hits.
type Pipeline struct {
	embedder embedding.Provider
	store    vectorstore.VectorStore
	cfg      Config
	logger   logger.ILogger
}

func NewPipeline(embedder embedding.Provider, store vectorstore.VectorStore, cfg Config, log logger.ILogger) *Pipeline {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Pipeline{
		embedder: embedder,
		store:    store,
		cfg:      cfg.withDefaults(),
		logger:   log,
	}
}

func (p *Pipeline) Config() Config {
	return p.cfg
}

// EnsureCollections creates the general and personal collections when missing.
func (p *Pipeline) EnsureCollections(ctx context.Context) error {
	for _, name := range []string{p.cfg.GeneralCollection, p.cfg.PersonalCollection} {
		if err := p.store.EnsureCollection(ctx, name, p.cfg.EmbeddingDim); err != nil {
			return fmt.Errorf("ensure collection %s: %w", name, err)
		}
	}
	return nil
}

func (p *Pipeline) Run(ctx context.Context, query string, opts RunOptions) (RagResult, error) {
	topK := p.cfg.TopK
	if opts.TopK > 0 {
		topK = opts.TopK
	}
	includePersonal := p.cfg.IncludePersonal
	if opts.IncludePersonal != nil {
		includePersonal = *opts.IncludePersonal
	}

	vectors, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return RagResult{}, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return RagResult{}, errors.New("embedding provider returned no vector for the query")
	}
	if err := embedding.CheckDimension(vectors, p.cfg.EmbeddingDim); err != nil {
		return RagResult{}, err
	}
	queryVec := vectors[0]

	collections := []string{p.cfg.GeneralCollection}
	if includePersonal {
		collections = append(collections, p.cfg.PersonalCollection)
	}

	results := make([]CollectionHits, 0, len(collections))
	for _, name := range collections {
		hits, err := p.store.Search(ctx, name, queryVec, topK)
		if err != nil {
			return RagResult{}, fmt.Errorf("search %s: %w", name, err)
		}
		p.logger.Debug("RAG", "Collection searched", map[string]interface{}{
			"collection": name,
			"hits":       len(hits),
			"limit":      topK,
		})
		results = append(results, CollectionHits{Collection: name, Hits: hits})
	}

	result := Merge(results)
	p.logger.Info("RAG", "Retrieval completed", map[string]interface{}{
		"collections": collections,
		"sources":     len(result.Sources),
	})
	return result, nil
}
