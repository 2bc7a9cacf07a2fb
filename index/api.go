package index

import "context"

// Index defines a generic vector index with basic lifecycle methods.
// It enables building from (id, embedding) pairs, kNN queries, and
// binary serialization for persistence. A built index is read-only and safe
// for concurrent queries.
type Index interface {
	// Build constructs the index from the given ids and vectors.
	// ids and vectors must have the same length; vectors must share one dimension.
	Build(ids []string, vectors [][]float32) error

	// Len returns the number of indexed vectors.
	Len() int

	// Dimension returns the vector dimensionality, 0 for an empty index.
	Dimension() int

	// ID returns the id stored at position.
	ID(position int) string

	// Vector returns the stored vector at position. The slice is shared with
	// the index and must not be mutated.
	Vector(position int) []float32

	// Query scores the indexed vectors against query and returns matches
	// ordered by decreasing cosine similarity, ties broken by position.
	Query(ctx context.Context, query []float32, opts ...QueryOption) ([]Match, error)

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}

// Match is a single query hit.
type Match struct {
	Position int
	ID       string
	Score    float64
}
