package vocab

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/viant/wordvec/index"
	"github.com/viant/wordvec/index/bruteforce"
	"github.com/viant/wordvec/vector"
)

const (
	// DefaultLimit is the conventional top-K for similarity queries.
	DefaultLimit = 10
	// Unbounded requests every match above the threshold.
	Unbounded = 0
)

var (
	// ErrUnknownToken reports a query token absent from the vocabulary.
	ErrUnknownToken = errors.New("vocab: unknown token")
	// ErrInvalidThreshold reports a NaN similarity threshold.
	ErrInvalidThreshold = errors.New("vocab: invalid similarity threshold")
	// ErrInvalidLimit reports a negative limit.
	ErrInvalidLimit = errors.New("vocab: invalid limit")
)

// Neighbor is a similar token with its cosine similarity to the query.
type Neighbor struct {
	Word       string  `json:"word"`
	Similarity float64 `json:"sim"`
}

// Entry is a batch lookup result. Token keeps the caller's casing.
type Entry struct {
	Token  string
	Vector []float32
	Found  bool
}

// SimilarResult is a batch similarity result. Err is ErrUnknownToken when
// Source is not in the vocabulary.
type SimilarResult struct {
	Source    string
	Neighbors []Neighbor
	Err       error
}

// Index is an immutable vocabulary with a similarity search structure.
type Index struct {
	keys        map[string]int
	rows        map[string][]int
	idx         index.Index
	parallelism int
}

// Option configures New.
type Option func(*Index)

// WithIndex selects the search structure to build into; the default is an
// exact bruteforce.Index.
func WithIndex(idx index.Index) Option {
	return func(v *Index) { v.idx = idx }
}

// WithParallelism bounds concurrent queries in FindSimilarBatch.
func WithParallelism(n int) Option {
	return func(v *Index) { v.parallelism = n }
}

// New validates tokens and vectors and builds the index. Every violation is
// returned as an error; callers must not serve an index that failed to build.
func New(tokens []string, vectors [][]float32, opts ...Option) (*Index, error) {
	if len(tokens) != len(vectors) {
		return nil, fmt.Errorf("vocab: %d tokens but %d vectors", len(tokens), len(vectors))
	}
	if len(tokens) == 0 {
		return nil, errors.New("vocab: empty vocabulary")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("vocab: zero-dimensional vectors")
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vocab: row %d (%q) has dimension %d, want %d", i, tokens[i], len(vec), dim)
		}
		if err := vector.CheckFinite(vec); err != nil {
			return nil, fmt.Errorf("vocab: row %d (%q): %w", i, tokens[i], err)
		}
	}
	ret := newIndex(opts)
	if ret.idx == nil {
		ret.idx = &bruteforce.Index{}
	}
	if err := ret.indexKeys(tokens); err != nil {
		return nil, err
	}
	if err := ret.idx.Build(tokens, vectors); err != nil {
		return nil, fmt.Errorf("vocab: build index: %w", err)
	}
	return ret, nil
}

// FromIndex wraps an already built index, for example one restored from a
// persisted blob. The index ids are the vocabulary tokens.
func FromIndex(idx index.Index, opts ...Option) (*Index, error) {
	if idx == nil || idx.Len() == 0 {
		return nil, errors.New("vocab: empty vocabulary")
	}
	if idx.Dimension() == 0 {
		return nil, errors.New("vocab: zero-dimensional vectors")
	}
	ret := newIndex(opts)
	ret.idx = idx
	tokens := make([]string, idx.Len())
	for i := range tokens {
		tokens[i] = idx.ID(i)
		if err := vector.CheckFinite(idx.Vector(i)); err != nil {
			return nil, fmt.Errorf("vocab: row %d (%q): %w", i, tokens[i], err)
		}
	}
	if err := ret.indexKeys(tokens); err != nil {
		return nil, err
	}
	return ret, nil
}

func newIndex(opts []Option) *Index {
	ret := &Index{}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.parallelism <= 0 {
		ret.parallelism = runtime.GOMAXPROCS(0)
	}
	return ret
}

// indexKeys maps normalized keys to rows. An exact lowercase spelling owns
// its key; otherwise the first case variant does. rows keeps every variant.
func (v *Index) indexKeys(tokens []string) error {
	v.keys = make(map[string]int, len(tokens))
	v.rows = make(map[string][]int, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for i, token := range tokens {
		if token == "" {
			return fmt.Errorf("vocab: empty token at row %d", i)
		}
		if _, ok := seen[token]; ok {
			return fmt.Errorf("vocab: duplicate token %q at row %d", token, i)
		}
		seen[token] = struct{}{}
		key := Normalize(token)
		v.rows[key] = append(v.rows[key], i)
		if prev, ok := v.keys[key]; !ok || (tokens[prev] != key && token == key) {
			v.keys[key] = i
		}
	}
	return nil
}

// Len returns the vocabulary size.
func (v *Index) Len() int { return v.idx.Len() }

// Dimension returns the embedding dimensionality.
func (v *Index) Dimension() int { return v.idx.Dimension() }

// Tokens returns the vocabulary in insertion order.
func (v *Index) Tokens() []string {
	out := make([]string, v.idx.Len())
	for i := range out {
		out[i] = v.idx.ID(i)
	}
	return out
}

// Position returns the row of token, matched case-insensitively.
func (v *Index) Position(token string) (int, bool) {
	pos, ok := v.keys[Normalize(token)]
	return pos, ok
}

// Lookup returns a copy of the vector for token. A token outside the
// vocabulary reports false and no vector.
func (v *Index) Lookup(token string) ([]float32, bool) {
	pos, ok := v.Position(token)
	if !ok {
		return nil, false
	}
	return append([]float32(nil), v.idx.Vector(pos)...), true
}

// BatchLookup looks up each token independently, preserving input order.
func (v *Index) BatchLookup(tokens []string) []Entry {
	out := make([]Entry, len(tokens))
	for i, token := range tokens {
		vec, ok := v.Lookup(token)
		out[i] = Entry{Token: token, Vector: vec, Found: ok}
	}
	return out
}

// FindSimilar returns the vocabulary tokens whose cosine similarity to token
// is at least threshold, most similar first, excluding token and its case
// variants. A limit
// of Unbounded returns every match. An unknown token yields ErrUnknownToken;
// a known token without matches yields an empty slice and nil error.
func (v *Index) FindSimilar(ctx context.Context, token string, threshold float64, limit int) ([]Neighbor, error) {
	if err := checkArgs(threshold, limit); err != nil {
		return nil, err
	}
	key := Normalize(token)
	pos, ok := v.keys[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownToken, token)
	}
	return v.query(ctx, v.idx.Vector(pos), threshold, limit, index.WithExclude(v.rows[key]...))
}

// FindSimilarVector ranks the vocabulary against an arbitrary vector.
func (v *Index) FindSimilarVector(ctx context.Context, vec []float32, threshold float64, limit int) ([]Neighbor, error) {
	if err := checkArgs(threshold, limit); err != nil {
		return nil, err
	}
	if len(vec) != v.Dimension() {
		return nil, fmt.Errorf("vocab: query dimension %d, want %d", len(vec), v.Dimension())
	}
	if err := vector.CheckFinite(vec); err != nil {
		return nil, fmt.Errorf("vocab: query: %w", err)
	}
	return v.query(ctx, vec, threshold, limit)
}

// FindSimilarBatch runs FindSimilar for every token. One token's failure is
// reported in its own result and does not affect the others; results follow
// input order.
func (v *Index) FindSimilarBatch(ctx context.Context, tokens []string, threshold float64, limit int) []SimilarResult {
	out := make([]SimilarResult, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.parallelism)
	for i, token := range tokens {
		out[i].Source = token
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Neighbors, out[i].Err = v.FindSimilar(gctx, token, threshold, limit)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (v *Index) query(ctx context.Context, vec []float32, threshold float64, limit int, opts ...index.QueryOption) ([]Neighbor, error) {
	opts = append(opts, index.WithMinScore(threshold), index.WithLimit(limit))
	matches, err := v.idx.Query(ctx, vec, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]Neighbor, len(matches))
	for i, m := range matches {
		out[i] = Neighbor{Word: m.ID, Similarity: m.Score}
	}
	return out, nil
}

func checkArgs(threshold float64, limit int) error {
	if math.IsNaN(threshold) {
		return ErrInvalidThreshold
	}
	if limit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return nil
}
