package vptree

import (
	"container/heap"
	"context"
	"fmt"
	"sort"

	"github.com/viant/wordvec/index"
	"github.com/viant/wordvec/index/bruteforce"
	"github.com/viant/wordvec/vector"
)

// Index implements a cosine kNN index using a VP-tree to prune search.
type Index struct {
	flat bruteforce.Index
	root *node
}

type node struct {
	idx   int // position in the flat index
	thr   float64
	left  *node
	right *node
}

// Build stores the vectors and constructs the VP-tree.
func (i *Index) Build(ids []string, vectors [][]float32) error {
	if err := i.flat.Build(ids, vectors); err != nil {
		return fmt.Errorf("vptree: %w", err)
	}
	idxs := make([]int, len(vectors))
	for k := range idxs {
		idxs[k] = k
	}
	i.root = i.buildVP(idxs)
	return nil
}

func (i *Index) buildVP(idxs []int) *node {
	if len(idxs) == 0 {
		return nil
	}
	// last element is the vantage point, keeping builds deterministic
	vp := idxs[len(idxs)-1]
	idxs = idxs[:len(idxs)-1]
	if len(idxs) == 0 {
		return &node{idx: vp}
	}
	dists := make([]float64, len(idxs))
	for k, j := range idxs {
		dists[k] = i.distance(i.flat.Vector(vp), i.flat.Magnitude(vp), j)
	}
	mid := len(dists) / 2
	order := make([]int, len(idxs))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool { return dists[order[a]] < dists[order[b]] })
	thr := dists[order[mid]]
	leftIdxs := make([]int, 0, mid+1)
	rightIdxs := make([]int, 0, len(idxs)-(mid+1))
	for rank, k := range order {
		if rank <= mid {
			leftIdxs = append(leftIdxs, idxs[k])
		} else {
			rightIdxs = append(rightIdxs, idxs[k])
		}
	}
	return &node{
		idx:   vp,
		thr:   thr,
		left:  i.buildVP(leftIdxs),
		right: i.buildVP(rightIdxs),
	}
}

// distance is 1 - cosine similarity with zero-magnitude vectors treated as
// orthogonal to everything.
func (i *Index) distance(q []float32, qm float64, j int) float64 {
	m := i.flat.Magnitude(j)
	if qm == 0 || m == 0 {
		return 1
	}
	return 1 - vector.Clamp(vector.Dot(q, i.flat.Vector(j))/(qm*m))
}

// Len returns the number of indexed vectors.
func (i *Index) Len() int { return i.flat.Len() }

// Dimension returns the vector dimensionality.
func (i *Index) Dimension() int { return i.flat.Dimension() }

// ID returns the id at position.
func (i *Index) ID(position int) string { return i.flat.ID(position) }

// Vector returns the shared row at position.
func (i *Index) Vector(position int) []float32 { return i.flat.Vector(position) }

// Query returns up to the requested limit of matches ordered by decreasing
// cosine similarity. Without a limit, or with one covering every candidate
// row, it delegates to an exact scan.
func (i *Index) Query(ctx context.Context, query []float32, opts ...index.QueryOption) ([]index.Match, error) {
	o := index.ApplyOptions(opts...)
	if o.Limit <= 0 || i.root == nil || o.Limit >= i.flat.Len()-len(o.Exclude) {
		return i.flat.Query(ctx, query, opts...)
	}
	if len(query) != i.flat.Dimension() {
		return nil, fmt.Errorf("vptree: query dim %d != index dim %d", len(query), i.flat.Dimension())
	}
	if ctx == nil {
		ctx = context.Background()
	}
	qm := vector.Magnitude(query)
	k := o.Limit + len(o.Exclude)
	cands := &candidates{}
	bound := 2.0 // cosine distance never exceeds 2
	visited := 0
	var err error
	var search func(n *node)
	search = func(n *node) {
		if n == nil || err != nil {
			return
		}
		if visited++; visited%bruteforce.ScanChunk == 0 {
			if err = ctx.Err(); err != nil {
				return
			}
		}
		d := i.distance(query, qm, n.idx)
		if cands.Len() < k {
			heap.Push(cands, candidate{idx: n.idx, dist: d})
		} else if top := (*cands)[0]; d < top.dist || (d == top.dist && n.idx < top.idx) {
			(*cands)[0] = candidate{idx: n.idx, dist: d}
			heap.Fix(cands, 0)
		}
		if cands.Len() == k {
			bound = (*cands)[0].dist
		}
		if d < n.thr {
			if d-bound <= n.thr {
				search(n.left)
			}
			if d+bound >= n.thr {
				search(n.right)
			}
		} else {
			if d+bound >= n.thr {
				search(n.right)
			}
			if d-bound <= n.thr {
				search(n.left)
			}
		}
	}
	search(i.root)
	if err != nil {
		return nil, err
	}
	out := make([]index.Match, 0, cands.Len())
	for _, c := range *cands {
		score := 1 - c.dist
		if !o.Accept(c.idx, score) {
			continue
		}
		out = append(out, index.Match{Position: c.idx, ID: i.flat.ID(c.idx), Score: score})
	}
	index.SortMatches(out)
	return o.Truncate(out), nil
}

// MarshalBinary uses the brute-force format for persistence.
func (i *Index) MarshalBinary() ([]byte, error) { return i.flat.MarshalBinary() }

// UnmarshalBinary loads the brute-force format and rebuilds the VP-tree.
func (i *Index) UnmarshalBinary(data []byte) error {
	ids, vecs, err := vector.DecodeMatrix(data)
	if err != nil {
		return fmt.Errorf("vptree: %w", err)
	}
	return i.Build(ids, vecs)
}

type candidate struct {
	idx  int
	dist float64
}

// candidates is a max-heap by distance holding the current best k.
type candidates []candidate

func (h candidates) Len() int { return len(h) }
func (h candidates) Less(a, b int) bool {
	if h[a].dist != h[b].dist {
		return h[a].dist > h[b].dist
	}
	return h[a].idx > h[b].idx
}
func (h candidates) Swap(a, b int) { h[a], h[b] = h[b], h[a] }

func (h *candidates) Push(x interface{}) { *h = append(*h, x.(candidate)) }

func (h *candidates) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

var _ index.Index = (*Index)(nil)
