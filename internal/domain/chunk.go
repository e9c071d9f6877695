package domain

// Chunk is one embedder-sized unit of text derived from a menu document during
// ingestion. Chunks are ephemeral: produced, embedded, and discarded within a
// single ingestion run.
type Chunk struct {
	Tenant  string
	Ordinal int
	Text    string
	Tokens  int // estimated subword token count
}
