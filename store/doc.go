// Package store persists a word vocabulary in SQLite and reads one from a
// pgvector table in PostgreSQL.
//
// The SQLite layout has two tables managed by embedded goose migrations:
//
//	words(position, token, key, embedding)  -- one row per token, embedding as float32 LE BLOB
//	vector_storage(name, kind, "index", size, updated_at)  -- serialized index blobs
//
// Closest ranks words in SQL with the vec_cosine function registered by the
// engine package, so RegisterVectorFunctions must run before the database
// connections are opened.
package store
