// Package vector holds the numeric primitives shared by this module:
//   - cosine similarity, L2 distance and magnitudes
//   - the embedding BLOB encoding used by the SQLite store
//   - the vocabulary+matrix binary encoding used by artifacts and indexes
//   - parsing of textual vector forms (JSON list, base64 BLOB, CSV)
package vector
