// Package factory constructs empty index implementations by kind name so a
// configured or persisted kind can be turned into a concrete index.
package factory

import (
	"fmt"
	"sort"

	"github.com/viant/wordvec/index"
	"github.com/viant/wordvec/index/bruteforce"
	"github.com/viant/wordvec/index/vptree"
)

const (
	// BruteForce is the exact linear scan.
	BruteForce = "bruteforce"
	// VPTree is the vantage-point tree.
	VPTree = "vptree"
)

var constructors = map[string]func() index.Index{
	BruteForce: func() index.Index { return &bruteforce.Index{} },
	VPTree:     func() index.Index { return &vptree.Index{} },
}

// New returns an empty index of the given kind. An empty kind selects
// BruteForce.
func New(kind string) (index.Index, error) {
	if kind == "" {
		kind = BruteForce
	}
	fn, ok := constructors[kind]
	if !ok {
		return nil, fmt.Errorf("factory: unknown index kind %q (want one of %v)", kind, Kinds())
	}
	return fn(), nil
}

// Kinds lists the supported kinds in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(constructors))
	for k := range constructors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
