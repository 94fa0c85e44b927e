package memory

import (
	"context"
	"testing"

	"omni-backend/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCollectionIsIdempotent(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.EnsureCollection(ctx, "general_docs", 3))
	require.NoError(t, s.EnsureCollection(ctx, "general_docs", 3))
	assert.ErrorIs(t, s.EnsureCollection(ctx, "general_docs", 4), vectorstore.ErrDimensionMismatch)
	assert.ErrorIs(t, s.EnsureCollection(ctx, "drop table;", 3), vectorstore.ErrInvalidCollection)
}

func TestSearchRanksByCosine(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	require.NoError(t, s.Upsert(ctx, "docs", []vectorstore.Point{
		{ID: "far", Vector: []float32{0, 1}, Text: "far"},
		{ID: "near", Vector: []float32{1, 0}, Text: "near", Metadata: map[string]any{"source": "a"}},
		{ID: "mid", Vector: []float32{1, 1}, Text: "mid"},
	}))

	hits, err := s.Search(ctx, "docs", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].ID)
	assert.Equal(t, "mid", hits[1].ID)
	assert.InDelta(t, 1.0, *hits[0].Score, 1e-9)
	assert.Equal(t, "near", hits[0].Payload["text"])
	assert.Equal(t, map[string]any{"source": "a"}, hits[0].Payload["metadata"])
}

func TestUpsertReplacesByID(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 2))
	require.NoError(t, s.Upsert(ctx, "docs", []vectorstore.Point{{ID: "1", Vector: []float32{1, 0}, Text: "old"}}))
	require.NoError(t, s.Upsert(ctx, "docs", []vectorstore.Point{{ID: "1", Vector: []float32{1, 0}, Text: "new"}}))

	hits, err := s.Search(ctx, "docs", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Payload["text"])
}

func TestMissingCollection(t *testing.T) {
	s := NewStore()
	_, err := s.Search(context.Background(), "nope", []float32{1}, 1)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", 3))
	err := s.Upsert(ctx, "docs", []vectorstore.Point{{ID: "1", Vector: []float32{1, 0}}})
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}
