package rag

import (
	"context"
	"fmt"
	"strconv"

	"omni-backend/internal/pkg/logger"
	"omni-backend/pkg/embedding"
	"omni-backend/pkg/utils"
	"omni-backend/pkg/vectorstore"

	"github.com/google/uuid"
)

// Document is one unit of knowledge to store. ID may be numeric, a UUID or any other string.
type Document struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type Ingestor struct {
	embedder embedding.Provider
	store    vectorstore.VectorStore
	dim      int
	logger   logger.ILogger
}

func NewIngestor(embedder embedding.Provider, store vectorstore.VectorStore, dim int, log logger.ILogger) *Ingestor {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Ingestor{embedder: embedder, store: store, dim: dim, logger: log}
}

// Upsert embeds docs and writes them to collection, returning the number written.
func (i *Ingestor) Upsert(ctx context.Context, collection string, docs []Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	texts := make([]string, len(docs))
	for idx, d := range docs {
		texts[idx] = d.Text
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return 0, fmt.Errorf("embedding provider returned %d vectors for %d documents", len(vectors), len(docs))
	}
	if i.dim > 0 {
		if err := embedding.CheckDimension(vectors, i.dim); err != nil {
			return 0, err
		}
	}

	points := make([]vectorstore.Point, len(docs))
	for idx, d := range docs {
		meta := d.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		points[idx] = vectorstore.Point{
			ID:       NormalizePointID(d.ID),
			Vector:   vectors[idx],
			Text:     d.Text,
			Metadata: meta,
		}
	}

	points = dedupePoints(points)
	if err := i.store.Upsert(ctx, collection, points); err != nil {
		return 0, err
	}

	i.logger.Info("RAG", "Documents upserted", map[string]interface{}{
		"collection": collection,
		"count":      len(points),
	})
	return len(points), nil
}

// dedupePoints keeps the last point for each id, at the position of its first occurrence.
func dedupePoints(points []vectorstore.Point) []vectorstore.Point {
	pos := make(map[string]int, len(points))
	out := make([]vectorstore.Point, 0, len(points))
	for _, p := range points {
		if idx, seen := pos[p.ID]; seen {
			out[idx] = p
			continue
		}
		pos[p.ID] = len(out)
		out = append(out, p)
	}
	return out
}

// ChunkDocuments splits long documents into chunkSize-rune pieces. A document that fits stays
// as is; pieces get ids "<id>#<n>" and carry chunk_index and parent_id in their metadata.
func ChunkDocuments(docs []Document, chunkSize, overlap int) []Document {
	if chunkSize <= 0 {
		return docs
	}

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		chunks := utils.SplitText(d.Text, chunkSize, overlap)
		if len(chunks) <= 1 {
			out = append(out, d)
			continue
		}
		for n, chunk := range chunks {
			meta := make(map[string]any, len(d.Metadata)+2)
			for k, v := range d.Metadata {
				meta[k] = v
			}
			meta["chunk_index"] = n
			meta["parent_id"] = d.ID
			out = append(out, Document{
				ID:       fmt.Sprintf("%s#%d", d.ID, n),
				Text:     chunk,
				Metadata: meta,
			})
		}
	}
	return out
}

// NormalizePointID keeps numeric ids in canonical integer form, canonicalizes UUIDs and
// maps anything else to a deterministic UUIDv5 in the URL namespace.
func NormalizePointID(raw string) string {
	if isDigits(raw) {
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return strconv.FormatUint(n, 10)
		}
	}
	if u, err := uuid.Parse(raw); err == nil {
		return u.String()
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(raw)).String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
