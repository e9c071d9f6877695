package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/akshaykn0797/menudex/internal/db"
	"github.com/akshaykn0797/menudex/internal/domain"
)

// --- Keys ---

func TestKeyHelpers(t *testing.T) {
	if got := MetaKey("menudex:", "moes"); got != "menudex:collection:moes" {
		t.Errorf("MetaKey = %s", got)
	}
	if got := IndexName("menudex:", "moes"); got != "menudex:moes:idx" {
		t.Errorf("IndexName = %s", got)
	}
	if got := RecordPrefix("menudex:", "moes"); got != "menudex:moes:" {
		t.Errorf("RecordPrefix = %s", got)
	}
	if got := MetaKey("other:", "moes"); got != "other:collection:moes" {
		t.Errorf("MetaKey custom prefix = %s", got)
	}
}

// --- Create ---

func TestCreate_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	var metaKey string
	var metaFields map[string]string
	ms.hSetFn = func(_ context.Context, key string, fields map[string]string) error {
		metaKey = key
		metaFields = fields
		return nil
	}

	var def *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, d *db.IndexDefinition) error {
		def = d
		return nil
	}

	if err := repo.Create(ctx, "moes"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if metaKey != "menudex:collection:moes" {
		t.Errorf("unexpected meta key: %s", metaKey)
	}
	if metaFields["tenant"] != "moes" || metaFields["vector_dim"] != "1536" {
		t.Errorf("unexpected meta fields: %v", metaFields)
	}
	if metaFields["created_at"] == "" {
		t.Error("missing created_at")
	}

	if def == nil {
		t.Fatal("index never created")
	}
	if def.Name != "menudex:moes:idx" {
		t.Errorf("unexpected index name: %s", def.Name)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "menudex:moes:" {
		t.Errorf("unexpected prefixes: %v", def.Prefixes)
	}

	var vec *db.IndexField
	for i := range def.Fields {
		if def.Fields[i].Type == db.IndexFieldVector {
			vec = &def.Fields[i]
		}
	}
	if vec == nil {
		t.Fatal("no vector field in index definition")
	}
	if vec.VectorDim != 1536 || vec.VectorDistance != db.DistanceCosine {
		t.Errorf("unexpected vector field: %+v", vec)
	}
	if vec.Name != "__vector" || vec.Alias != "vector" {
		t.Errorf("vector field must be __vector AS vector, got %q AS %q", vec.Name, vec.Alias)
	}
}

func TestCreate_CustomPrefix(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, 8, "other:")

	var metaKey string
	ms.hSetFn = func(_ context.Context, key string, _ map[string]string) error {
		metaKey = key
		return nil
	}
	var def *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, d *db.IndexDefinition) error {
		def = d
		return nil
	}

	if err := repo.Create(context.Background(), "moes"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if metaKey != "other:collection:moes" {
		t.Errorf("unexpected meta key: %s", metaKey)
	}
	if def == nil || def.Name != "other:moes:idx" {
		t.Fatalf("unexpected index definition: %+v", def)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "other:moes:" {
		t.Errorf("unexpected prefixes: %v", def.Prefixes)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	created := false
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		created = true
		return nil
	}

	err := repo.Create(context.Background(), "moes")
	if !errors.Is(err, domain.ErrCollectionAlreadyExists) {
		t.Fatalf("expected ErrCollectionAlreadyExists, got %v", err)
	}
	if created {
		t.Error("index must not be created for an existing collection")
	}
}

func TestCreate_IndexRaceMapsToAlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return db.ErrIndexExists
	}

	deleted := false
	ms.delFn = func(_ context.Context, _ string) error {
		deleted = true
		return nil
	}

	err := repo.Create(context.Background(), "moes")
	if !errors.Is(err, domain.ErrCollectionAlreadyExists) {
		t.Fatalf("expected ErrCollectionAlreadyExists, got %v", err)
	}
	if !deleted {
		t.Error("metadata must be rolled back when the index exists")
	}
}

func TestCreate_IndexFailureRollsBackMeta(t *testing.T) {
	repo, ms := newTestRepo(t)
	indexErr := errors.New("ft.create blew up")
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		return indexErr
	}

	deleted := false
	ms.delFn = func(_ context.Context, _ string) error {
		deleted = true
		return nil
	}

	err := repo.Create(context.Background(), "moes")
	if !errors.Is(err, indexErr) {
		t.Fatalf("expected index error, got %v", err)
	}
	if !deleted {
		t.Error("metadata must be rolled back on index failure")
	}
}

// --- Exists ---

func TestExists(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.existsFn = func(_ context.Context, key string) (bool, error) {
		return key == "menudex:collection:moes", nil
	}

	ok, err := repo.Exists(context.Background(), "moes")
	if err != nil || !ok {
		t.Fatalf("Exists(moes) = %v, %v", ok, err)
	}

	ok, err = repo.Exists(context.Background(), "ghost")
	if err != nil || ok {
		t.Fatalf("Exists(ghost) = %v, %v", ok, err)
	}
}

// --- Delete ---

func TestDelete_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.hGetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{"tenant": "moes", "vector_dim": "1536"}, nil
	}

	var order []string
	ms.delFn = func(_ context.Context, key string) error {
		order = append(order, "del:"+key)
		return nil
	}
	ms.dropIndexFn = func(_ context.Context, name string) error {
		order = append(order, "drop:"+name)
		return nil
	}
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		if pattern != "menudex:moes:*" {
			t.Errorf("unexpected scan pattern: %s", pattern)
		}
		return []string{"menudex:moes:id-1", "menudex:moes:id-2"}, nil
	}
	var reaped []string
	ms.delMultiFn = func(_ context.Context, keys []string) error {
		reaped = keys
		return nil
	}

	if err := repo.Delete(ctx, "moes"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// metadata must go before the index so the collection stops resolving first
	if len(order) != 2 || order[0] != "del:menudex:collection:moes" || order[1] != "drop:menudex:moes:idx" {
		t.Errorf("unexpected operation order: %v", order)
	}
	if len(reaped) != 2 {
		t.Errorf("expected 2 record keys reaped, got %v", reaped)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hGetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	err := repo.Delete(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrCollectionNotFound) {
		t.Fatalf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestDelete_ToleratesMissingIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hGetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{"tenant": "moes"}, nil
	}
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) {
		return false, nil
	}
	dropped := false
	ms.dropIndexFn = func(_ context.Context, _ string) error {
		dropped = true
		return nil
	}
	var reaped []string
	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		return []string{"menudex:moes:orphan"}, nil
	}
	ms.delMultiFn = func(_ context.Context, keys []string) error {
		reaped = keys
		return nil
	}

	if err := repo.Delete(context.Background(), "moes"); err != nil {
		t.Fatalf("missing index must not fail delete: %v", err)
	}
	if dropped {
		t.Error("drop must be skipped when the index is absent")
	}
	if len(reaped) != 1 {
		t.Errorf("orphaned records must still be reaped, got %v", reaped)
	}
}

func TestDelete_IndexCheckFailureRestoresMeta(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hGetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{"tenant": "moes"}, nil
	}
	checkErr := errors.New("ft.info timeout")
	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) {
		return false, checkErr
	}

	var restored map[string]string
	ms.hSetFn = func(_ context.Context, _ string, fields map[string]string) error {
		restored = fields
		return nil
	}

	err := repo.Delete(context.Background(), "moes")
	if !errors.Is(err, checkErr) {
		t.Fatalf("expected index check error, got %v", err)
	}
	if restored["tenant"] != "moes" {
		t.Error("metadata must be restored when the index check fails")
	}
}

func TestDelete_DropFailureRestoresMeta(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hGetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{"tenant": "moes", "vector_dim": "1536"}, nil
	}
	dropErr := errors.New("ft.dropindex timeout")
	ms.dropIndexFn = func(_ context.Context, _ string) error { return dropErr }

	var restored map[string]string
	ms.hSetFn = func(_ context.Context, _ string, fields map[string]string) error {
		restored = fields
		return nil
	}

	err := repo.Delete(context.Background(), "moes")
	if !errors.Is(err, dropErr) {
		t.Fatalf("expected drop error, got %v", err)
	}
	if restored["tenant"] != "moes" {
		t.Error("metadata must be restored when the index drop fails")
	}
}
