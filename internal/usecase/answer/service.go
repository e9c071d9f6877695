// Package answer retrieves menu context and produces schema-constrained
// answers to tenant queries.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// fallbackMessage is returned when the model cannot be coaxed into the
// response schema within the retry budget.
const fallbackMessage = "I could not produce a valid answer for that question. Please try rephrasing it."

// Options tune the retrieval and rerank stages.
type Options struct {
	TopK      int
	FetchK    int
	MMRLambda float64
}

// Service answers natural-language questions about one tenant's menu.
type Service struct {
	collections CollectionReader
	records     RecordSearcher
	embedder    Embedder
	generator   Generator
	locks       RLocker
	opts        Options
	logger      *zap.Logger
}

// New creates an answer service.
func New(
	collections CollectionReader, records RecordSearcher, embedder Embedder,
	generator Generator, locks RLocker, opts Options, logger *zap.Logger,
) *Service {
	return &Service{
		collections: collections,
		records:     records,
		embedder:    embedder,
		generator:   generator,
		locks:       locks,
		opts:        opts,
		logger:      logger,
	}
}

// Answer embeds the query, retrieves and reranks menu chunks, and generates
// a validated response envelope. A response that fails validation gets one
// repair attempt before the fallback message.
func (s *Service) Answer(ctx context.Context, tenant, query string) (domain.Envelope, error) {
	if err := domain.ValidateTenantName(tenant); err != nil {
		return domain.Envelope{}, err
	}
	if strings.TrimSpace(query) == "" {
		return domain.Envelope{}, fmt.Errorf("empty query: %w", domain.ErrValidation)
	}

	s.locks.RLock(tenant)
	defer s.locks.RUnlock(tenant)

	exists, err := s.collections.Exists(ctx, tenant)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("check collection for %s: %w", tenant, err)
	}
	if !exists {
		return domain.Envelope{}, fmt.Errorf("tenant %s: %w", tenant, domain.ErrCollectionNotFound)
	}

	embedded, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("embed query for %s: %w", tenant, err)
	}

	candidates, err := s.records.SearchKNN(ctx, tenant, embedded.Embedding, s.opts.FetchK, true)
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("retrieve context for %s: %w", tenant, err)
	}

	selected := maxMarginalRelevance(embedded.Embedding, candidates, s.opts.MMRLambda, s.opts.TopK)
	menuContext := joinContext(selected)

	result, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Instruction: instruction,
		Context:     menuContext,
		Query:       query,
	})
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("generate answer for %s: %w", tenant, err)
	}

	envelope, err := parseResponse(result.Text)
	if err == nil {
		return envelope, nil
	}
	if !errors.Is(err, domain.ErrInvalidResponseFormat) {
		return domain.Envelope{}, err
	}

	s.logger.Warn("Model response failed validation, retrying once",
		zap.String("tenant", tenant),
		zap.Error(err),
	)

	repaired, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Instruction: instruction + "\n\n" + repairInstruction,
		Context:     menuContext,
		Query:       query,
	})
	if err != nil {
		return domain.Envelope{}, fmt.Errorf("repair answer for %s: %w", tenant, err)
	}

	envelope, err = parseResponse(repaired.Text)
	if err == nil {
		return envelope, nil
	}

	s.logger.Error("Model response failed validation after retry",
		zap.String("tenant", tenant),
		zap.Error(err),
	)
	return domain.NewMessageEnvelope(fallbackMessage), nil
}
