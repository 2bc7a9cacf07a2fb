// Package engine opens modernc.org/sqlite connections and registers the
// vector scalar functions (vec_cosine, vec_l2) that let SQL rank word
// embeddings stored as little-endian float32 BLOBs.
package engine
