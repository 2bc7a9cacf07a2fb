package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/viant/wordvec/vector"
)

// PostgresSource names a pgvector table holding one row per word.
type PostgresSource struct {
	DSN          string
	Table        string
	WordColumn   string
	VectorColumn string
}

func (p *PostgresSource) init() {
	if p.Table == "" {
		p.Table = "Navec"
	}
	if p.WordColumn == "" {
		p.WordColumn = "Word"
	}
	if p.VectorColumn == "" {
		p.VectorColumn = "Vector"
	}
}

// LoadPostgres reads every (word, vector) pair of a pgvector table ordered by
// word. Vectors are read in their text form so no pgvector client type is
// needed.
func LoadPostgres(ctx context.Context, src PostgresSource) ([]string, [][]float32, error) {
	src.init()
	db, err := sql.Open("postgres", src.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("store: open postgres: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	rows, err := db.QueryContext(ctx, postgresQuery(src))
	if err != nil {
		return nil, nil, fmt.Errorf("store: query %s: %w", src.Table, err)
	}
	defer rows.Close()

	var tokens []string
	var vectors [][]float32
	for rows.Next() {
		var word, text string
		if err := rows.Scan(&word, &text); err != nil {
			return nil, nil, err
		}
		vec, err := vector.ParseText(text)
		if err != nil {
			return nil, nil, fmt.Errorf("store: word %q: %w", word, err)
		}
		tokens = append(tokens, word)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return tokens, vectors, nil
}

func postgresQuery(src PostgresSource) string {
	word := pq.QuoteIdentifier(src.WordColumn)
	return fmt.Sprintf(`SELECT %s, %s::text FROM %s ORDER BY %s`,
		word, pq.QuoteIdentifier(src.VectorColumn), pq.QuoteIdentifier(src.Table), word)
}
