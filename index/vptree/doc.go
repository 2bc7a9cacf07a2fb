// Package vptree provides a vantage-point tree over cosine distance. It is
// the approximate-search extension point of this module: capped queries
// descend the tree and prune subtrees with the triangle inequality. Cosine
// distance is not a true metric, so pruning may drop genuine neighbours.
// Unbounded queries fall back to the exact scan of the embedded
// brute-force index, which also provides storage and serialization.
package vptree
