package domain

// KeyPrefix namespaces every key this service writes to the cache store.
const KeyPrefix = "gamesearch:"

// SearchConfig holds the fixed store layout the search pipeline runs against.
type SearchConfig struct {
	Collection      string
	VectorIndex     string
	EmbeddingPath   string
	CandidatePool   int
	DefaultPageSize int
	MaxPageSize     int
	MaxDepth        int
}

// DefaultSearchConfig returns the layout produced by the games ETL.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Collection:      "games",
		VectorIndex:     "vector_index",
		EmbeddingPath:   "text_embeddings",
		CandidatePool:   150,
		DefaultPageSize: 20,
		MaxPageSize:     100,
		MaxDepth:        10000,
	}
}
