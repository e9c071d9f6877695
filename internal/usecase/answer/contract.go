package answer

import (
	"context"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// CollectionReader checks for a tenant's collection.
type CollectionReader interface {
	Exists(ctx context.Context, tenant string) (bool, error)
}

// RecordSearcher retrieves nearest records from a tenant's collection.
type RecordSearcher interface {
	SearchKNN(
		ctx context.Context, tenant string, vector []float32, k int, includeVectors bool,
	) ([]domain.VectorRecord, error)
}

// Embedder vectorizes the user query.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Generator produces the model answer from instruction, context, and query.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// RLocker lets readers proceed concurrently while ingestion holds the
// write side.
type RLocker interface {
	RLock(name string)
	RUnlock(name string)
}
