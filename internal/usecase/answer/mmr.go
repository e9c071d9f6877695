package answer

import (
	"math"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// maxMarginalRelevance reranks KNN candidates to balance query relevance
// against redundancy among the selected set.
// score(d) = lambda*sim(q,d) - (1-lambda)*max sim(d, selected).
// Candidates without a vector are skipped.
func maxMarginalRelevance(
	query []float32, candidates []domain.VectorRecord, lambda float64, k int,
) []domain.VectorRecord {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]domain.VectorRecord, 0, k)
	remaining := make([]domain.VectorRecord, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) > 0 {
			remaining = append(remaining, c)
		}
	}

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, cand := range remaining {
			relevance := cosineSimilarity(query, cand.Vector)

			redundancy := 0.0
			for _, sel := range selected {
				if sim := cosineSimilarity(cand.Vector, sel.Vector); sim > redundancy {
					redundancy = sim
				}
			}

			score := lambda*relevance - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
