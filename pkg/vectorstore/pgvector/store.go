package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"omni-backend/pkg/vectorstore"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store maps each collection onto a Postgres table with a vector column and a cosine HNSW index.
type Store struct {
	db *gorm.DB
}

var _ vectorstore.VectorStore = &Store{}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type pointRow struct {
	ID        string          `gorm:"primaryKey"`
	Text      string          `gorm:"type:text"`
	Metadata  datatypes.JSON  `gorm:"type:jsonb"`
	Embedding pgvector.Vector `gorm:"type:vector"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type scoredRow struct {
	ID       string
	Text     string
	Metadata datatypes.JSON
	Score    float64
}

func (s *Store) EnsureCollection(ctx context.Context, name string, dim int) error {
	if err := vectorstore.ValidateCollectionName(name); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("enable pgvector extension: %w", err)
	}

	existing, err := s.collectionDim(ctx, name)
	if err != nil {
		return err
	}
	if existing > 0 {
		if existing != dim {
			return fmt.Errorf("%w: %s has %d, requested %d", vectorstore.ErrDimensionMismatch, name, existing, dim)
		}
		return nil
	}

	// Identifiers cannot be bound as parameters; name is validated above.
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id text PRIMARY KEY,
		text text NOT NULL DEFAULT '',
		metadata jsonb NOT NULL DEFAULT '{}',
		embedding vector(%d) NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`, name, dim)
	if err := db.Exec(createTable).Error; err != nil {
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	createIndex := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)",
		name, name,
	)
	if err := db.Exec(createIndex).Error; err != nil {
		return fmt.Errorf("create index on %s: %w", name, err)
	}
	return nil
}

// collectionDim returns the declared vector dimension of the collection, or 0 when the table is absent.
func (s *Store) collectionDim(ctx context.Context, name string) (int, error) {
	var dims []int
	err := s.db.WithContext(ctx).
		Raw(`SELECT a.atttypmod FROM pg_attribute a
			WHERE a.attrelid = to_regclass(?) AND a.attname = 'embedding' AND NOT a.attisdropped`, name).
		Scan(&dims).Error
	if err != nil {
		return 0, fmt.Errorf("inspect collection %s: %w", name, err)
	}
	if len(dims) == 0 {
		return 0, nil
	}
	return dims[0], nil
}

func (s *Store) Search(ctx context.Context, collection string, vector []float32, limit int) ([]vectorstore.Hit, error) {
	if err := vectorstore.ValidateCollectionName(collection); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []vectorstore.Hit{}, nil
	}

	dim, err := s.collectionDim(ctx, collection)
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		return nil, fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, collection)
	}
	if dim != len(vector) {
		return nil, fmt.Errorf("%w: query has %d, collection %s has %d",
			vectorstore.ErrDimensionMismatch, len(vector), collection, dim)
	}

	queryVector := pgvector.NewVector(vector)

	// Cosine distance in pgvector is 1 - cosine_similarity
	var rows []scoredRow
	err = s.db.WithContext(ctx).
		Table(collection).
		Select("id, text, metadata, 1 - (embedding <=> ?) AS score", queryVector).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	hits := make([]vectorstore.Hit, len(rows))
	for i, row := range rows {
		score := row.Score
		hits[i] = vectorstore.Hit{
			ID:      row.ID,
			Score:   &score,
			Payload: vectorstore.NewPayload(row.Text, decodeMetadata(row.Metadata)),
		}
	}
	return hits, nil
}

func (s *Store) Upsert(ctx context.Context, collection string, points []vectorstore.Point) error {
	if err := vectorstore.ValidateCollectionName(collection); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]pointRow, len(points))
	for i, p := range points {
		meta := p.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("encode metadata for point %s: %w", p.ID, err)
		}
		rows[i] = pointRow{
			ID:        p.ID,
			Text:      p.Text,
			Metadata:  datatypes.JSON(metaJSON),
			Embedding: pgvector.NewVector(p.Vector),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	err := s.db.WithContext(ctx).
		Table(collection).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text", "metadata", "embedding", "updated_at"}),
		}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", collection, err)
	}
	return nil
}

func decodeMetadata(raw datatypes.JSON) map[string]any {
	meta := map[string]any{}
	if len(raw) == 0 {
		return meta
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return map[string]any{}
	}
	return meta
}
