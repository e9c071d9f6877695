// Package collection manages the per-tenant collection lifecycle: one
// metadata hash plus one FT vector index per tenant.
package collection

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/akshaykn0797/menudex/internal/db"
	"github.com/akshaykn0797/menudex/internal/domain"
)

// store is the consumer interface for collection lifecycle operations.
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements the collection lifecycle against the vector store.
type Repo struct {
	store     store
	vectorDim int
	prefix    string
}

// New creates a collection repository. vectorDim fixes the FT index dimension
// for every collection it creates; prefix namespaces all keys and index names.
func New(s store, vectorDim int, prefix string) *Repo {
	return &Repo{store: s, vectorDim: vectorDim, prefix: prefix}
}

// Create allocates an empty collection: HSET metadata then FT.CREATE.
// On FT.CREATE failure, rolls back the HSET via DEL.
func (r *Repo) Create(ctx context.Context, tenant string) error {
	metaKey := MetaKey(r.prefix, tenant)

	exists, err := r.store.Exists(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return domain.ErrCollectionAlreadyExists
	}

	indexDef := &db.IndexDefinition{
		Name:     IndexName(r.prefix, tenant),
		Prefixes: []string{RecordPrefix(r.prefix, tenant)},
		Fields: []db.IndexField{
			{Name: "tenant", Type: db.IndexFieldTag},
			{Name: "ordinal", Type: db.IndexFieldNumeric},
			{
				// The alias makes @vector addressable in KNN queries and
				// names the distance field __vector_score.
				Name:           "__vector",
				Alias:          "vector",
				Type:           db.IndexFieldVector,
				VectorAlgo:     db.VectorFlat,
				VectorDim:      r.vectorDim,
				VectorDistance: db.DistanceCosine,
			},
		},
	}

	meta := map[string]string{
		"tenant":     tenant,
		"vector_dim": strconv.Itoa(r.vectorDim),
		"created_at": strconv.FormatInt(time.Now().UnixMilli(), 10),
	}

	if err := r.store.HSet(ctx, metaKey, meta); err != nil {
		return fmt.Errorf("hset collection %s: %w", tenant, err)
	}

	if err := r.store.CreateIndex(ctx, indexDef); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			cleanupErr := r.store.Del(ctx, metaKey)
			return errors.Join(domain.ErrCollectionAlreadyExists, cleanupErr)
		}
		cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(err, cleanupErr)
	}

	return nil
}

// Exists reports whether a tenant has a collection.
func (r *Repo) Exists(ctx context.Context, tenant string) (bool, error) {
	exists, err := r.store.Exists(ctx, MetaKey(r.prefix, tenant))
	if err != nil {
		return false, fmt.Errorf("check collection %s: %w", tenant, err)
	}
	return exists, nil
}

// Delete removes a tenant's collection and every record in it. Metadata goes
// first so the collection stops resolving before records are reaped; no
// reader can observe a half-deleted collection.
func (r *Repo) Delete(ctx context.Context, tenant string) error {
	metaKey := MetaKey(r.prefix, tenant)

	metaBackup, err := r.store.HGetAll(ctx, metaKey)
	if err != nil {
		return fmt.Errorf("hgetall collection %s: %w", tenant, err)
	}
	if len(metaBackup) == 0 {
		return domain.ErrCollectionNotFound
	}

	if err := r.store.Del(ctx, metaKey); err != nil {
		return fmt.Errorf("del collection %s: %w", tenant, err)
	}

	// The index may already be gone after an interrupted delete; records are
	// still reaped below either way.
	idxName := IndexName(r.prefix, tenant)
	idxExists, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		cleanupErr := r.store.HSet(ctx, metaKey, metaBackup)
		return errors.Join(err, cleanupErr)
	}

	// FT.DROPINDEX — rollback the metadata DEL on error
	if idxExists {
		if err := r.store.DropIndex(ctx, idxName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			cleanupErr := r.store.HSet(ctx, metaKey, metaBackup)
			return errors.Join(err, cleanupErr)
		}
	}

	keys, err := r.store.Scan(ctx, RecordPrefix(r.prefix, tenant)+"*")
	if err != nil {
		return fmt.Errorf("scan records %s: %w", tenant, err)
	}
	if err := r.store.DelMulti(ctx, keys); err != nil {
		return fmt.Errorf("del records %s: %w", tenant, err)
	}

	return nil
}

// Redis key patterns: {prefix}collection:{tenant}, {prefix}{tenant}:idx, {prefix}{tenant}:

// MetaKey is the metadata hash key for a tenant's collection.
func MetaKey(prefix, tenant string) string {
	return fmt.Sprintf("%scollection:%s", prefix, tenant)
}

// IndexName is the FT index name for a tenant's collection.
func IndexName(prefix, tenant string) string {
	return fmt.Sprintf("%s%s:idx", prefix, tenant)
}

// RecordPrefix is the key prefix under which a tenant's records live.
func RecordPrefix(prefix, tenant string) string {
	return fmt.Sprintf("%s%s:", prefix, tenant)
}
