// Package chi exposes the HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/akshaykn0797/menudex/internal/domain"
	"github.com/akshaykn0797/menudex/internal/logger"
	"github.com/akshaykn0797/menudex/internal/usecase/ingest"
)

// Error codes returned in JSON error responses.
const (
	codeBadRequest            = "bad_request"
	codeValidationFailed      = "validation_failed"
	codeCollectionNotFound    = "collection_not_found"
	codeCollectionExists      = "collection_already_exists"
	codeMalformedDocument     = "malformed_document"
	codeRateLimited           = "rate_limited"
	codeEmbeddingProvider     = "embedding_provider_error"
	codeGenerationProvider    = "generation_provider_error"
	codeInvalidResponseFormat = "invalid_response_format"
	codeInternalError         = "internal_error"
)

// deleteAllTarget in the collections path deletes every tenant's collection.
const deleteAllTarget = "all"

// Ingester runs the ingestion pipeline.
type Ingester interface {
	IngestOne(ctx context.Context, tenant string) (ingest.Stats, error)
	IngestAll(ctx context.Context) []ingest.TenantReport
	Delete(ctx context.Context, tenant string) error
	DeleteAll(ctx context.Context) []ingest.TenantReport
}

// Answerer answers questions against a tenant's indexed menu.
type Answerer interface {
	Answer(ctx context.Context, tenant, query string) (domain.Envelope, error)
}

// MenuReader returns the full flattened menu for a tenant.
type MenuReader interface {
	FullMenu(ctx context.Context, tenant string) ([]domain.MenuItem, error)
}

// Pinger checks backing store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the usecases into HTTP handlers.
type Server struct {
	ingester      Ingester
	answerer      Answerer
	menus         MenuReader
	pinger        Pinger
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ingester Ingester, answerer Answerer, menus MenuReader, pinger Pinger, logger *zap.Logger,
) *Server {
	s := &Server{
		ingester: ingester,
		answerer: answerer,
		menus:    menus,
		pinger:   pinger,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrCollectionNotFound, http.StatusNotFound, codeCollectionNotFound),
		sentinelHandler(domain.ErrCollectionAlreadyExists, http.StatusConflict, codeCollectionExists),
		sentinelHandler(domain.ErrMalformedDocument, http.StatusBadRequest, codeMalformedDocument),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrGenerationProvider, http.StatusBadGateway, codeGenerationProvider),
		sentinelHandler(domain.ErrInvalidResponseFormat,
			http.StatusUnprocessableEntity, codeInvalidResponseFormat),
	}
	return s
}

// Routes mounts all API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ingest", s.IngestAll)
		r.Route("/tenants/{tenant}", func(r chi.Router) {
			r.Post("/ingest", s.IngestOne)
			r.Get("/menu", s.GetMenu)
			r.Post("/query", s.Query)
		})
		r.Delete("/collections/{target}", s.DeleteCollections)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// IngestAll handles POST /api/v1/ingest.
func (s *Server) IngestAll(w http.ResponseWriter, r *http.Request) {
	reports := s.ingester.IngestAll(r.Context())

	succeeded, failed := 0, 0
	for _, rep := range reports {
		if rep.Status == ingest.StatusOK {
			succeeded++
		} else {
			failed++
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tenants":   reports,
		"succeeded": succeeded,
		"failed":    failed,
	})
}

// IngestOne handles POST /api/v1/tenants/{tenant}/ingest.
func (s *Server) IngestOne(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	stats, err := s.ingester.IngestOne(r.Context(), tenant)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"tenant": tenant,
		"chunks": stats.Chunks,
	})
}

// GetMenu handles GET /api/v1/tenants/{tenant}/menu.
func (s *Server) GetMenu(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	items, err := s.menus.FullMenu(r.Context(), tenant)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if items == nil {
		items = []domain.MenuItem{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Query handles POST /api/v1/tenants/{tenant}/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	tenant := chi.URLParam(r, "tenant")

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	envelope, err := s.answerer.Answer(r.Context(), tenant, req.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

// DeleteCollections handles DELETE /api/v1/collections/{target}. The target
// is either a tenant name or "all".
func (s *Server) DeleteCollections(w http.ResponseWriter, r *http.Request) {
	target := chi.URLParam(r, "target")

	if target == deleteAllTarget {
		reports := s.ingester.DeleteAll(r.Context())
		writeJSON(w, http.StatusOK, map[string]any{"tenants": reports})
		return
	}

	if err := s.ingester.Delete(r.Context(), target); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrCollectionNotFound,
		domain.ErrCollectionAlreadyExists,
		domain.ErrMalformedDocument,
		domain.ErrValidation,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProvider,
		domain.ErrGenerationProvider,
		domain.ErrInvalidResponseFormat,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Request-scoped logger set by the wide-event middleware carries request_id.
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
