// Package bruteforce provides an exact vector index that answers kNN and
// threshold queries by scanning all vectors and scoring via cosine
// similarity. A scan costs O(n x dim) per query; this trades sub-linear
// lookup for exact ranking and is the default index of this module. It
// serializes with the vector matrix encoding, which doubles as the
// vocabulary artifact format.
package bruteforce
