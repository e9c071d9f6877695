// Package record stores and retrieves vector records inside a tenant's
// collection.
package record

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/akshaykn0797/menudex/internal/db"
	"github.com/akshaykn0797/menudex/internal/domain"
	"github.com/akshaykn0797/menudex/internal/repository/collection"
)

// store is the consumer interface for record operations.
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements record persistence and KNN retrieval.
type Repo struct {
	store  store
	prefix string
}

// New creates a record repository. prefix must match the collection
// repository's so record keys land under the indexed prefixes.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Insert writes all records in one pipelined round-trip. Records carry their
// owning tenant and chunk ordinal so isolation is checkable from the data.
func (r *Repo) Insert(ctx context.Context, tenant string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(records))
	for i, rec := range records {
		items[i] = db.HashSetItem{
			Key: r.recordKey(tenant, rec.ID),
			Fields: map[string]string{
				"__content": rec.Text,
				"__vector":  vectorToBytes(rec.Vector),
				"tenant":    rec.Tenant,
				"ordinal":   strconv.Itoa(rec.Ordinal),
			},
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("insert %d records for %s: %w", len(records), tenant, err)
	}
	return nil
}

// SearchKNN returns the k nearest records to the query vector within one
// tenant's collection, most similar first.
func (r *Repo) SearchKNN(
	ctx context.Context, tenant string, vector []float32, k int, includeVectors bool,
) ([]domain.VectorRecord, error) {
	returnFields := []string{"__content", "tenant", "ordinal", "__vector_score"}
	if includeVectors {
		returnFields = append(returnFields, "__vector")
	}

	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:     collection.IndexName(r.prefix, tenant),
		Vector:        vector,
		K:             k,
		ReturnFields:  returnFields,
		IncludeVector: includeVectors,
	})
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, domain.ErrCollectionNotFound
		}
		return nil, fmt.Errorf("search knn %s: %w", tenant, err)
	}

	return r.parseKNNResults(sr, tenant, includeVectors), nil
}

func (r *Repo) parseKNNResults(sr *db.SearchResult, tenant string, includeVectors bool) []domain.VectorRecord {
	if sr == nil || sr.Total == 0 {
		return nil
	}

	prefix := collection.RecordPrefix(r.prefix, tenant)
	records := make([]domain.VectorRecord, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		rec := domain.VectorRecord{
			ID:     strings.TrimPrefix(entry.Key, prefix),
			Tenant: entry.Fields["tenant"],
			Text:   entry.Fields["__content"],
			Score:  entry.Score,
		}
		if ord, err := strconv.Atoi(entry.Fields["ordinal"]); err == nil {
			rec.Ordinal = ord
		}
		if includeVectors {
			rec.Vector = bytesToVector(entry.Fields["__vector"])
		}
		records = append(records, rec)
	}

	return records
}

func (r *Repo) recordKey(tenant, id string) string {
	return collection.RecordPrefix(r.prefix, tenant) + id
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
