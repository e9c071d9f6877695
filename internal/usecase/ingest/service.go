// Package ingest builds per-tenant vector collections from menu documents.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// Tenant status values reported by batch operations.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// TenantReport is the per-tenant outcome of a batch ingest or delete.
type TenantReport struct {
	Tenant string `json:"tenant"`
	Status string `json:"status"`
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Stats summarizes a single successful ingestion.
type Stats struct {
	Chunks       int
	PromptTokens int
}

// Service orchestrates the fetch, chunk, embed, index pipeline.
type Service struct {
	source      Source
	chunker     Chunker
	collections CollectionRepository
	records     RecordWriter
	embedder    Embedder
	locks       Locker
	registry    Registry
	logger      *zap.Logger
}

// New creates an ingest service.
func New(
	source Source, chunker Chunker, collections CollectionRepository,
	records RecordWriter, embedder Embedder, locks Locker, registry Registry,
	logger *zap.Logger,
) *Service {
	return &Service{
		source:      source,
		chunker:     chunker,
		collections: collections,
		records:     records,
		embedder:    embedder,
		locks:       locks,
		registry:    registry,
		logger:      logger,
	}
}

// IngestOne runs the full pipeline for a single tenant. All chunks are
// embedded before any write, so a provider failure leaves no partial
// collection behind. An existing collection must be deleted first.
func (s *Service) IngestOne(ctx context.Context, tenant string) (Stats, error) {
	if err := domain.ValidateTenantName(tenant); err != nil {
		return Stats{}, err
	}

	doc, err := s.source.Fetch(ctx, tenant)
	if err != nil {
		return Stats{}, fmt.Errorf("fetch menu for %s: %w", tenant, err)
	}

	chunks, err := s.chunker.Chunk(&doc)
	if err != nil {
		return Stats{}, fmt.Errorf("chunk menu for %s: %w", tenant, err)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	// The whole embed-and-write sequence runs under the tenant's write lock
	// so concurrent ingestions cannot interleave.
	s.locks.Lock(tenant)
	defer s.locks.Unlock(tenant)

	batch, err := s.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return Stats{}, fmt.Errorf("embed %d chunks for %s: %w", len(chunks), tenant, err)
	}
	if len(batch.Embeddings) != len(chunks) {
		return Stats{}, fmt.Errorf(
			"embedding count mismatch: got %d, want %d: %w",
			len(batch.Embeddings), len(chunks), domain.ErrEmbeddingProvider,
		)
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, c := range chunks {
		records[i] = domain.VectorRecord{
			ID:      uuid.NewString(),
			Tenant:  c.Tenant,
			Ordinal: c.Ordinal,
			Text:    c.Text,
			Vector:  batch.Embeddings[i],
		}
	}

	if err := s.collections.Create(ctx, tenant); err != nil {
		return Stats{}, fmt.Errorf("create collection for %s: %w", tenant, err)
	}

	if err := s.records.Insert(ctx, tenant, records); err != nil {
		if delErr := s.collections.Delete(ctx, tenant); delErr != nil {
			s.logger.Error("Rollback of partial collection failed",
				zap.String("tenant", tenant),
				zap.Error(delErr),
			)
		}
		return Stats{}, fmt.Errorf("index records for %s: %w", tenant, err)
	}

	s.registry.Add(tenant)

	s.logger.Info("Tenant ingested",
		zap.String("tenant", tenant),
		zap.Int("chunks", len(records)),
		zap.Int("prompt_tokens", batch.PromptTokens),
	)

	return Stats{Chunks: len(records), PromptTokens: batch.PromptTokens}, nil
}

// IngestAll runs IngestOne for every registered tenant. A tenant failure is
// recorded in its report and never aborts the rest of the run.
func (s *Service) IngestAll(ctx context.Context) []TenantReport {
	tenants := s.registry.List()
	reports := make([]TenantReport, 0, len(tenants))

	for _, tenant := range tenants {
		stats, err := s.IngestOne(ctx, tenant)
		if err != nil {
			s.logger.Warn("Tenant ingest failed",
				zap.String("tenant", tenant),
				zap.Error(err),
			)
			reports = append(reports, TenantReport{
				Tenant: tenant,
				Status: StatusFailed,
				Error:  err.Error(),
			})
			continue
		}
		reports = append(reports, TenantReport{
			Tenant: tenant,
			Status: StatusOK,
			Chunks: stats.Chunks,
		})
	}

	return reports
}

// Delete removes one tenant's collection and all its records.
func (s *Service) Delete(ctx context.Context, tenant string) error {
	if err := domain.ValidateTenantName(tenant); err != nil {
		return err
	}

	s.locks.Lock(tenant)
	defer s.locks.Unlock(tenant)

	if err := s.collections.Delete(ctx, tenant); err != nil {
		return fmt.Errorf("delete collection for %s: %w", tenant, err)
	}
	return nil
}

// DeleteAll removes every registered tenant's collection. Tenants without a
// collection are reported as skipped.
func (s *Service) DeleteAll(ctx context.Context) []TenantReport {
	tenants := s.registry.List()
	reports := make([]TenantReport, 0, len(tenants))

	for _, tenant := range tenants {
		err := s.Delete(ctx, tenant)
		switch {
		case err == nil:
			reports = append(reports, TenantReport{Tenant: tenant, Status: StatusOK})
		case errors.Is(err, domain.ErrCollectionNotFound):
			reports = append(reports, TenantReport{Tenant: tenant, Status: StatusSkipped})
		default:
			s.logger.Warn("Tenant delete failed",
				zap.String("tenant", tenant),
				zap.Error(err),
			)
			reports = append(reports, TenantReport{
				Tenant: tenant,
				Status: StatusFailed,
				Error:  err.Error(),
			})
		}
	}

	return reports
}
