// Package index defines a minimal abstraction for vector indexes that can be
// built from embeddings, queried for nearest neighbours by cosine similarity,
// and serialized for persistence. Implementations in this module include an
// exact brute-force scan (the default) and an approximate vantage-point tree.
package index
