package vptree

import (
	"context"
	"math"
	"testing"

	"github.com/viant/wordvec/index"
	"github.com/viant/wordvec/index/bruteforce"
)

func sample() ([]string, [][]float32) {
	ids := make([]string, 0, 64)
	vecs := make([][]float32, 0, 64)
	for k := 0; k < 64; k++ {
		angle := float64(k) * 2 * math.Pi / 64
		ids = append(ids, string(rune('A'+k%26))+string(rune('a'+k/26)))
		vecs = append(vecs, []float32{float32(math.Cos(angle)), float32(math.Sin(angle)), 0.1})
	}
	return ids, vecs
}

func TestQueryCapped(t *testing.T) {
	idx := &Index{}
	if err := idx.Build([]string{"cat", "dog", "car"}, [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}}); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, err := idx.Query(context.Background(), []float32{1, 0}, index.WithLimit(1), index.WithExclude(0))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "dog" {
		t.Fatalf("Query = %+v, want [dog]", got)
	}
}

func TestQueryContract(t *testing.T) {
	ids, vecs := sample()
	idx := &Index{}
	if err := idx.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, q := range []int{0, 7, 31} {
		got, err := idx.Query(context.Background(), vecs[q], index.WithLimit(5), index.WithExclude(q), index.WithMinScore(0.5))
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(got) > 5 {
			t.Fatalf("Query returned %d matches, limit 5", len(got))
		}
		for n, m := range got {
			if m.Position == q {
				t.Fatalf("query position %d returned", q)
			}
			if m.Score < 0.5 {
				t.Fatalf("score %v below threshold", m.Score)
			}
			if n > 0 && got[n-1].Score < m.Score {
				t.Fatalf("matches not sorted: %+v", got)
			}
		}
	}
}

func TestUnboundedMatchesBruteForce(t *testing.T) {
	ids, vecs := sample()
	tree := &Index{}
	if err := tree.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	flat := &bruteforce.Index{}
	if err := flat.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want, err := flat.Query(context.Background(), vecs[3], index.WithMinScore(0))
	if err != nil {
		t.Fatalf("brute Query failed: %v", err)
	}
	got, err := tree.Query(context.Background(), vecs[3], index.WithMinScore(0))
	if err != nil {
		t.Fatalf("tree Query failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("tree returned %d matches, brute %d", len(got), len(want))
	}
	for n := range want {
		if got[n] != want[n] {
			t.Fatalf("match[%d] = %+v, want %+v", n, got[n], want[n])
		}
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	ids, vecs := sample()
	idx := &Index{}
	if err := idx.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := idx.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	restored := &Index{}
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if restored.Len() != len(ids) || restored.Dimension() != 3 || restored.ID(5) != ids[5] {
		t.Fatalf("restored index mismatch: len=%d dim=%d", restored.Len(), restored.Dimension())
	}
}

func TestQueryHugeLimit(t *testing.T) {
	ids, vecs := sample()
	idx := &Index{}
	if err := idx.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	flat := &bruteforce.Index{}
	if err := flat.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, limit := range []int{math.MaxInt, len(ids) - 1, len(ids)} {
		opts := []index.QueryOption{index.WithLimit(limit), index.WithExclude(3), index.WithMinScore(0.5)}
		got, err := idx.Query(context.Background(), vecs[3], opts...)
		if err != nil {
			t.Fatalf("Query(limit %d) failed: %v", limit, err)
		}
		want, _ := flat.Query(context.Background(), vecs[3], opts...)
		if len(got) != len(want) || len(got) == 0 {
			t.Fatalf("Query(limit %d) len = %d, want %d", limit, len(got), len(want))
		}
		for j := range got {
			if got[j].Position != want[j].Position {
				t.Fatalf("Query(limit %d)[%d] = %+v, want %+v", limit, j, got[j], want[j])
			}
		}
	}
}

func TestQueryTiesByPosition(t *testing.T) {
	ids := make([]string, 40)
	vecs := make([][]float32, 40)
	for k := range ids {
		ids[k] = string(rune('A'+k%26)) + string(rune('a'+k/26))
		vecs[k] = []float32{1, 0}
	}
	idx := &Index{}
	if err := idx.Build(ids, vecs); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got, err := idx.Query(context.Background(), []float32{0.6, 0.8}, index.WithLimit(3))
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 3 || got[0].Position != 0 || got[1].Position != 1 || got[2].Position != 2 {
		t.Fatalf("Query ties = %+v, want positions [0 1 2]", got)
	}
}
