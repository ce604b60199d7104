package mode

// Mode is the retrieval strategy selected by the caller.
type Mode string

// Search mode constants.
const (
	// Structured compiles the query into a filter or pipeline.
	Structured Mode = "structured"
	// Vector embeds the query and runs a similarity search.
	Vector Mode = "vector"
)

// FromVectorFlag maps the use_vector_search request flag onto a mode.
func FromVectorFlag(useVector bool) Mode {
	if useVector {
		return Vector
	}
	return Structured
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Structured || m == Vector
}

// UsesVector reports whether the mode runs a similarity search.
func (m Mode) UsesVector() bool { return m == Vector }
