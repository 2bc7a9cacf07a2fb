package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/viant/wordvec/vocab"
)

// the lowercase spelling owns a key over its case variants
const queryRowSQL = `SELECT position FROM words WHERE key = ? ORDER BY (token = key) DESC, position LIMIT 1`

const closestSQL = `
SELECT token, sim FROM (
    SELECT w.token, w.position, vec_cosine(w.embedding, q.embedding) AS sim
    FROM words w, (SELECT embedding FROM words WHERE position = ?) q
    WHERE w.key <> ?
)
WHERE sim >= ?
ORDER BY sim DESC, position ASC
LIMIT ?`

// Closest ranks stored words by cosine similarity to token inside SQLite.
// It follows the vocab.Index contract: the token and its case variants are
// excluded, a limit
// of vocab.Unbounded returns every match and an unknown token reports
// vocab.ErrUnknownToken.
func (s *Store) Closest(ctx context.Context, token string, minScore float64, limit int) ([]vocab.Neighbor, error) {
	if math.IsNaN(minScore) {
		return nil, vocab.ErrInvalidThreshold
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: %d", vocab.ErrInvalidLimit, limit)
	}
	key := vocab.Normalize(token)
	var pos int
	err := s.db.QueryRowContext(ctx, queryRowSQL, key).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", vocab.ErrUnknownToken, token)
	}
	if err != nil {
		return nil, err
	}
	sqlLimit := limit
	if limit == vocab.Unbounded {
		sqlLimit = -1
	}
	rows, err := s.db.QueryContext(ctx, closestSQL, pos, key, minScore, sqlLimit)
	if err != nil {
		return nil, fmt.Errorf("store: closest %q: %w", token, err)
	}
	defer rows.Close()

	out := []vocab.Neighbor{}
	for rows.Next() {
		var n vocab.Neighbor
		if err := rows.Scan(&n.Word, &n.Similarity); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
