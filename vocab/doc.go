// Package vocab implements a read-only word embedding vocabulary: token to
// vector lookup and cosine nearest-neighbour queries over a fixed set of
// tokens. An Index is built once from decoded (tokens, vectors) pairs and is
// never mutated afterwards, so any number of goroutines may query it without
// synchronization.
//
// Similarity queries use the exact brute-force scan from index/bruteforce by
// default. Each query costs O(vocabulary size x dimension); that is the chosen
// trade-off of exact ranking over sub-linear approximate search. The
// vptree index can be supplied with WithIndex for capped queries at higher
// volume.
package vocab
