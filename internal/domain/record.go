package domain

// VectorRecord is an indexed chunk inside a tenant's collection. IDs are
// freshly generated on every ingestion and never reused.
type VectorRecord struct {
	ID      string
	Tenant  string
	Ordinal int
	Text    string
	Vector  []float32
	Score   float64 // similarity to the query, set on retrieval only
}
