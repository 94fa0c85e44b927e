package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotConfigured      = errors.New("vector store is not configured")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrDimensionMismatch  = errors.New("collection dimension mismatch")
	ErrInvalidCollection  = errors.New("invalid collection name")
)

var collectionNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

// Point is one stored vector with its text and metadata.
type Point struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]any
}

// Hit is one search result. Score is nil when the backend did not report one.
// Payload carries "text" and "metadata".
type Hit struct {
	ID      string
	Score   *float64
	Payload map[string]any
}

// VectorStore is the similarity search backend behind retrieval and ingestion.
type VectorStore interface {
	// EnsureCollection creates the collection with cosine distance if it does not exist.
	// An existing collection with a different dimension yields ErrDimensionMismatch.
	EnsureCollection(ctx context.Context, name string, dim int) error
	// Search returns at most limit hits ordered by descending similarity.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error)
	// Upsert inserts or replaces points by id.
	Upsert(ctx context.Context, collection string, points []Point) error
}

func ValidateCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCollection, name)
	}
	return nil
}

// NewPayload builds the stored payload shape {text, metadata}.
func NewPayload(text string, metadata map[string]any) map[string]any {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return map[string]any{
		"text":     text,
		"metadata": metadata,
	}
}

// Unavailable fails every call with the cause recorded at startup, so a missing database
// only fails the requests that need it.
type Unavailable struct {
	Cause error
}

var _ VectorStore = Unavailable{}

func (u Unavailable) err() error {
	if u.Cause == nil {
		return ErrNotConfigured
	}
	return fmt.Errorf("%w: %v", ErrNotConfigured, u.Cause)
}

func (u Unavailable) EnsureCollection(context.Context, string, int) error {
	return u.err()
}

func (u Unavailable) Search(context.Context, string, []float32, int) ([]Hit, error) {
	return nil, u.err()
}

func (u Unavailable) Upsert(context.Context, string, []Point) error {
	return u.err()
}
