package pgvector

import (
	"context"
	"testing"

	"omni-backend/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestInvalidCollectionNamesAreRejectedBeforeSQL(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	assert.ErrorIs(t, s.EnsureCollection(ctx, "docs; DROP TABLE users", 384), vectorstore.ErrInvalidCollection)
	_, err := s.Search(ctx, "1docs", []float32{1}, 5)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidCollection)
	assert.ErrorIs(t, s.Upsert(ctx, "", nil), vectorstore.ErrInvalidCollection)
}

func TestUpsertEmptyBatchIsNoop(t *testing.T) {
	s := NewStore(nil)
	assert.NoError(t, s.Upsert(context.Background(), "general_docs", nil))
}

func TestDecodeMetadata(t *testing.T) {
	assert.Equal(t, map[string]any{"source": "faq"}, decodeMetadata(datatypes.JSON(`{"source":"faq"}`)))
	assert.Equal(t, map[string]any{}, decodeMetadata(nil))
	assert.Equal(t, map[string]any{}, decodeMetadata(datatypes.JSON(`[1,2]`)))
}
