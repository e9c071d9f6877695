package ingest

import (
	"context"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// Source fetches the current menu document for a tenant.
type Source interface {
	Fetch(ctx context.Context, tenant string) (domain.MenuDocument, error)
}

// Chunker splits a menu document into token-bounded chunks.
type Chunker interface {
	Chunk(doc *domain.MenuDocument) ([]domain.Chunk, error)
}

// CollectionRepository manages per-tenant collection lifecycle.
type CollectionRepository interface {
	Create(ctx context.Context, tenant string) error
	Exists(ctx context.Context, tenant string) (bool, error)
	Delete(ctx context.Context, tenant string) error
}

// RecordWriter persists vector records into a tenant's collection.
type RecordWriter interface {
	Insert(ctx context.Context, tenant string, records []domain.VectorRecord) error
}

// Embedder vectorizes chunk texts in batches.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

// Locker serializes writers against readers per tenant.
type Locker interface {
	Lock(name string)
	Unlock(name string)
}

// Registry is the set of tenants known to the service.
type Registry interface {
	Has(name string) bool
	Add(name string)
	List() []string
}
