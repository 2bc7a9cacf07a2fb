package index

import (
	"math"
	"sort"
)

// QueryOption customises query execution.
type QueryOption func(*QueryOptions)

// QueryOptions describes query-time configuration derived from options.
type QueryOptions struct {
	// Limit caps the number of matches; values <= 0 mean unbounded.
	Limit int
	// MinScore drops matches scoring below it when HasMinScore is set.
	MinScore    float64
	HasMinScore bool
	// Exclude lists positions that never appear in the results.
	Exclude map[int]struct{}
}

// WithLimit caps the result size; k <= 0 requests every match.
func WithLimit(k int) QueryOption {
	return func(o *QueryOptions) { o.Limit = k }
}

// WithMinScore keeps only matches with score >= min.
func WithMinScore(min float64) QueryOption {
	return func(o *QueryOptions) {
		o.MinScore = min
		o.HasMinScore = true
	}
}

// WithExclude removes the given positions from the results.
func WithExclude(positions ...int) QueryOption {
	return func(o *QueryOptions) {
		if o.Exclude == nil {
			o.Exclude = make(map[int]struct{}, len(positions))
		}
		for _, p := range positions {
			o.Exclude[p] = struct{}{}
		}
	}
}

// ApplyOptions builds a configuration by applying the provided options.
func ApplyOptions(opts ...QueryOption) QueryOptions {
	cfg := QueryOptions{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Accept reports whether a candidate at position with score passes the
// exclusion and minimum score filters. NaN scores never pass.
func (o *QueryOptions) Accept(position int, score float64) bool {
	if _, ok := o.Exclude[position]; ok {
		return false
	}
	if math.IsNaN(score) {
		return false
	}
	if o.HasMinScore && score < o.MinScore {
		return false
	}
	return true
}

// SortMatches orders matches by score descending, then by position ascending.
func SortMatches(matches []Match) {
	sort.Slice(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].Position < matches[b].Position
	})
}

// Truncate applies the limit to already sorted matches.
func (o *QueryOptions) Truncate(matches []Match) []Match {
	if o.Limit > 0 && len(matches) > o.Limit {
		return matches[:o.Limit]
	}
	return matches
}
