// Package openai adapts the OpenAI API to the embedding and generation
// contracts.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/akshaykn0797/menudex/internal/domain"
	"github.com/akshaykn0797/menudex/internal/metrics"
)

const (
	maxAttempts    = 3
	retryBaseDelay = 500 * time.Millisecond
)

// Embedder is an embedding provider using the OpenAI API.
type Embedder struct {
	client       *openai.Client
	model        openai.EmbeddingModel
	dimensions   int
	maxBatchSize int
	timeout      time.Duration
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// EmbedderConfig holds the embedding provider settings.
type EmbedderConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Dimensions   int
	MaxBatchSize int
	TimeoutSec   int
	RateLimitRPS float64
	Logger       *zap.Logger
}

// NewEmbedder creates an OpenAI embedding provider.
func NewEmbedder(cfg *EmbedderConfig) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}

	return &Embedder{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        openai.EmbeddingModel(cfg.Model),
		dimensions:   cfg.Dimensions,
		maxBatchSize: cfg.MaxBatchSize,
		timeout:      time.Duration(cfg.TimeoutSec) * time.Second,
		limiter:      limiter,
		logger:       cfg.Logger,
	}
}

// Embed implements the single-text embedding contract.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	batch, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    batch.Embeddings[0],
		PromptTokens: batch.PromptTokens,
		TotalTokens:  batch.TotalTokens,
	}, nil
}

// BatchEmbed vectorizes all texts, splitting into API-sized batches. Any
// batch failure fails the whole call so callers never see partial results.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	result := domain.BatchEmbeddingResult{
		Embeddings: make([][]float32, 0, len(texts)),
	}

	batchSize := e.maxBatchSize
	if batchSize <= 0 {
		batchSize = len(texts)
	}

	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}

		result.Embeddings = append(result.Embeddings, resp.Embeddings...)
		result.PromptTokens += resp.PromptTokens
		result.TotalTokens += resp.TotalTokens
	}

	return result, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	var resp openai.EmbeddingResponse
	err := withRetry(ctx, e.logger, func(ctx context.Context) error {
		if err := e.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		callCtx := ctx
		if e.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, e.timeout)
			defer cancel()
		}

		start := time.Now()
		var callErr error
		resp, callErr = e.client.CreateEmbeddings(callCtx, req)
		duration := time.Since(start)

		if callErr != nil {
			metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
			return parseAPIError(callErr, domain.ErrEmbeddingProvider)
		}

		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "success").Inc()
		metrics.EmbeddingRequestDuration.WithLabelValues(string(e.model)).Observe(duration.Seconds())
		return nil
	})
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}

	if len(resp.Data) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(e.model), "error").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"embedding response size mismatch: got %d, want %d: %w",
			len(resp.Data), len(texts), domain.ErrEmbeddingProvider,
		)
	}

	embeddings := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(embeddings) {
			return domain.BatchEmbeddingResult{}, fmt.Errorf(
				"embedding response index %d out of range: %w", d.Index, domain.ErrEmbeddingProvider,
			)
		}
		embeddings[d.Index] = d.Embedding
	}

	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(string(e.model), "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(string(e.model), "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// withRetry retries transient provider failures with exponential backoff and
// jitter. Client errors other than 429 fail immediately.
func withRetry(ctx context.Context, logger *zap.Logger, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || attempt == maxAttempts {
			return lastErr
		}

		delay := retryBaseDelay * time.Duration(1<<(attempt-1))
		delay += time.Duration(rand.Int63n(int64(delay / 2)))

		logger.Warn("Provider request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return lastErr
}

// isRetryable reports whether the error is a rate limit, server error, or
// timeout worth another attempt.
func isRetryable(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	return false
}

// parseAPIError extracts a readable error from the API response and wraps it
// with the given sentinel. Rate limits additionally carry ErrRateLimited.
func parseAPIError(err error, sentinel error) error {
	status := 0
	detail := ""

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		detail = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		detail = extractMessage(reqErr.Body)
	default:
		return fmt.Errorf("provider request failed: %w: %w", err, sentinel)
	}

	if status == http.StatusTooManyRequests {
		return fmt.Errorf("provider API error %d: %s: %w: %w", status, detail, domain.ErrRateLimited, err)
	}
	return fmt.Errorf("provider API error %d: %s: %w", status, detail, sentinel)
}

// extractMessage pulls the error message out of a JSON error body.
func extractMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(body)
}
