// Package artifact loads the (tokens, vectors) pair a vocabulary is built
// from. Sources are a binary matrix file (memory mapped), a word2vec or GloVe
// text file, a SQLite store, or a pgvector table. Any malformed or missing
// source is an error and the caller must not start serving.
package artifact
