package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrProviderNotConfigured is returned when the selected provider has no credentials or endpoint.
var ErrProviderNotConfigured = errors.New("embedding provider is not configured")

// Provider turns texts into vectors. Output order equals input order and every vector
// has unit length. An empty input returns an empty result without calling the model.
type Provider interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// CheckDimension verifies that every vector has exactly dim components.
func CheckDimension(vectors [][]float32, dim int) error {
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), dim)
		}
	}
	return nil
}

// NormalizeVector scales vec to unit length (magnitude = 1). Zero vectors are returned unchanged.
// Cosine distance in pgvector assumes normalized input.
func NormalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
