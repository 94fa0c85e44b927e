package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"omni-backend/pkg/vectorstore"
)

type collection struct {
	dim    int
	order  []string
	points map[string]vectorstore.Point
}

// Store keeps collections in process memory and ranks by cosine similarity.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

var _ vectorstore.VectorStore = &Store{}

func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) EnsureCollection(_ context.Context, name string, dim int) error {
	if err := vectorstore.ValidateCollectionName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		if c.dim != dim {
			return fmt.Errorf("%w: %s has %d, requested %d", vectorstore.ErrDimensionMismatch, name, c.dim, dim)
		}
		return nil
	}
	s.collections[name] = &collection{dim: dim, points: make(map[string]vectorstore.Point)}
	return nil
}

func (s *Store) Upsert(_ context.Context, name string, points []vectorstore.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, name)
	}
	for _, p := range points {
		if len(p.Vector) != c.dim {
			return fmt.Errorf("%w: point %s has %d, collection %s has %d",
				vectorstore.ErrDimensionMismatch, p.ID, len(p.Vector), name, c.dim)
		}
	}
	for _, p := range points {
		if _, exists := c.points[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		c.points[p.ID] = p
	}
	return nil
}

func (s *Store) Search(_ context.Context, name string, vector []float32, limit int) ([]vectorstore.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, name)
	}
	if len(vector) != c.dim {
		return nil, fmt.Errorf("%w: query has %d, collection %s has %d",
			vectorstore.ErrDimensionMismatch, len(vector), name, c.dim)
	}
	if limit <= 0 {
		return []vectorstore.Hit{}, nil
	}

	hits := make([]vectorstore.Hit, 0, len(c.order))
	for _, id := range c.order {
		p := c.points[id]
		score := cosine(vector, p.Vector)
		hits = append(hits, vectorstore.Hit{
			ID:      p.ID,
			Score:   &score,
			Payload: vectorstore.NewPayload(p.Text, p.Metadata),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return *hits[i].Score > *hits[j].Score
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
