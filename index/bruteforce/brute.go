package bruteforce

import (
	"container/heap"
	"context"
	"fmt"

	"github.com/viant/wordvec/index"
	"github.com/viant/wordvec/vector"
)

// ScanChunk is the number of rows scored between cancellation checks.
const ScanChunk = 4096

// Index is a simple brute-force vector index implementing cosine similarity.
type Index struct {
	ids  []string
	vecs [][]float32
	dim  int
	mags []float64
}

// Build loads ids and vectors and precomputes magnitudes.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("bruteforce: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	if len(ids) == 0 {
		i.ids, i.vecs, i.mags, i.dim = nil, nil, nil, 0
		return nil
	}
	dim := len(vectors[0])
	for j := range vectors {
		if len(vectors[j]) != dim {
			return fmt.Errorf("bruteforce: inconsistent vector dims %d vs %d at row %d", len(vectors[j]), dim, j)
		}
	}
	mags := make([]float64, len(vectors))
	for j := range vectors {
		mags[j] = vector.Magnitude(vectors[j])
	}
	i.ids = append([]string(nil), ids...)
	i.vecs = append([][]float32(nil), vectors...)
	i.dim = dim
	i.mags = mags
	return nil
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return len(i.vecs) }

// Dimension returns the vector dimensionality.
func (i *Index) Dimension() int { return i.dim }

// ID returns the id at position.
func (i *Index) ID(position int) string { return i.ids[position] }

// Vector returns the shared row at position.
func (i *Index) Vector(position int) []float32 { return i.vecs[position] }

// Magnitude returns the cached L2 norm of the row at position.
func (i *Index) Magnitude(position int) float64 { return i.mags[position] }

// Query returns matches by cosine similarity. Rows with zero magnitude, and
// every row when the query itself has zero magnitude, score 0.
func (i *Index) Query(ctx context.Context, query []float32, opts ...index.QueryOption) ([]index.Match, error) {
	if i.dim == 0 || len(i.vecs) == 0 {
		return nil, nil
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	o := index.ApplyOptions(opts...)
	qm := vector.Magnitude(query)

	var top *worstFirst
	var all []index.Match
	if o.Limit > 0 {
		top = &worstFirst{}
	}
	for j := range i.vecs {
		if j%ScanChunk == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		s := i.score(query, qm, j)
		if !o.Accept(j, s) {
			continue
		}
		m := index.Match{Position: j, ID: i.ids[j], Score: s}
		if top == nil {
			all = append(all, m)
			continue
		}
		if top.Len() < o.Limit {
			heap.Push(top, m)
			continue
		}
		if worse((*top)[0], m) {
			(*top)[0] = m
			heap.Fix(top, 0)
		}
	}
	if top != nil {
		all = []index.Match(*top)
	}
	index.SortMatches(all)
	return o.Truncate(all), nil
}

func (i *Index) score(query []float32, qm float64, j int) float64 {
	if qm == 0 || i.mags[j] == 0 {
		return 0
	}
	return vector.Clamp(vector.Dot(query, i.vecs[j]) / (qm * i.mags[j]))
}

// MarshalBinary stores the index with vector.EncodeMatrix.
func (i *Index) MarshalBinary() ([]byte, error) {
	return vector.EncodeMatrix(i.ids, i.vecs)
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	ids, vecs, err := vector.DecodeMatrix(data)
	if err != nil {
		return fmt.Errorf("bruteforce: %w", err)
	}
	return i.Build(ids, vecs)
}

// worse reports whether a ranks below b.
func worse(a, b index.Match) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Position > b.Position
}

// worstFirst is a bounded candidate heap with the lowest ranked match on top.
type worstFirst []index.Match

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(a, b int) bool { return worse(h[a], h[b]) }
func (h worstFirst) Swap(a, b int)      { h[a], h[b] = h[b], h[a] }

func (h *worstFirst) Push(x interface{}) { *h = append(*h, x.(index.Match)) }

func (h *worstFirst) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

var _ index.Index = (*Index)(nil)
