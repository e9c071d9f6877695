package answer

import (
	"math"
	"testing"

	"github.com/akshaykn0797/menudex/internal/domain"
)

func rec(id string, vec ...float32) domain.VectorRecord {
	return domain.VectorRecord{ID: id, Vector: vec}
}

func TestMMR_PicksMostRelevantFirst(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.VectorRecord{
		rec("far", 0, 1),
		rec("near", 1, 0),
		rec("mid", 0.7, 0.7),
	}

	selected := maxMarginalRelevance(query, candidates, 0.5, 1)
	if len(selected) != 1 {
		t.Fatalf("expected 1 result, got %d", len(selected))
	}
	if selected[0].ID != "near" {
		t.Errorf("expected near first, got %s", selected[0].ID)
	}
}

func TestMMR_PenalizesRedundancy(t *testing.T) {
	query := []float32{1, 0}
	// two near-duplicates close to the query plus one distinct candidate
	candidates := []domain.VectorRecord{
		rec("dup-a", 1, 0),
		rec("dup-b", 0.999, 0.01),
		rec("distinct", 0.5, 0.5),
	}

	selected := maxMarginalRelevance(query, candidates, 0.5, 2)
	if len(selected) != 2 {
		t.Fatalf("expected 2 results, got %d", len(selected))
	}
	if selected[0].ID != "dup-a" {
		t.Errorf("expected dup-a first, got %s", selected[0].ID)
	}
	if selected[1].ID != "distinct" {
		t.Errorf("expected distinct second (duplicate penalized), got %s", selected[1].ID)
	}
}

func TestMMR_KLargerThanCandidates(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.VectorRecord{rec("only", 1, 0)}

	selected := maxMarginalRelevance(query, candidates, 0.5, 10)
	if len(selected) != 1 {
		t.Fatalf("expected 1 result, got %d", len(selected))
	}
}

func TestMMR_SkipsVectorlessCandidates(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.VectorRecord{
		{ID: "no-vector"},
		rec("ok", 1, 0),
	}

	selected := maxMarginalRelevance(query, candidates, 0.5, 2)
	if len(selected) != 1 || selected[0].ID != "ok" {
		t.Fatalf("expected only the vectored candidate, got %+v", selected)
	}
}

func TestMMR_Empty(t *testing.T) {
	if got := maxMarginalRelevance([]float32{1}, nil, 0.5, 3); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := cosineSimilarity(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %f, want %f", got, tc.want)
			}
		})
	}
}
