package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/viant/wordvec/vector"
	"github.com/viant/wordvec/vocab"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// goose keeps its filesystem, dialect and logger in package state.
var migrateMu sync.Mutex

// Store is a SQLite-backed vocabulary.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger routes migration output to logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New migrates db to the current schema and wraps it.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	s := &Store{db: db, logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(s.logger)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

// DB exposes the underlying database.
func (s *Store) DB() *sql.DB { return s.db }

// Save replaces the stored vocabulary in one transaction. Persisted index
// blobs are dropped because they no longer describe the words table.
func (s *Store) Save(ctx context.Context, tokens []string, vectors [][]float32) error {
	if len(tokens) != len(vectors) {
		return fmt.Errorf("store: %d tokens but %d vectors", len(tokens), len(vectors))
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM words`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vector_storage`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO words(position, token, key, embedding) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, token := range tokens {
		if err := vector.CheckFinite(vectors[i]); err != nil {
			return fmt.Errorf("store: row %d (%q): %w", i, token, err)
		}
		emb, err := vector.EncodeEmbedding(vectors[i])
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i, token, vocab.Normalize(token), emb); err != nil {
			return fmt.Errorf("store: insert %q: %w", token, err)
		}
	}
	return tx.Commit()
}

// Load returns the stored vocabulary in position order.
func (s *Store) Load(ctx context.Context) ([]string, [][]float32, error) {
	return loadWords(ctx, s.db)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func loadWords(ctx context.Context, q queryer) ([]string, [][]float32, error) {
	rows, err := q.QueryContext(ctx, `SELECT token, embedding FROM words ORDER BY position`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var tokens []string
	var vectors [][]float32
	for rows.Next() {
		var token string
		var emb []byte
		if err := rows.Scan(&token, &emb); err != nil {
			return nil, nil, err
		}
		vec, err := vector.DecodeEmbedding(emb)
		if err != nil {
			return nil, nil, fmt.Errorf("store: word %q: %w", token, err)
		}
		tokens = append(tokens, token)
		vectors = append(vectors, vec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return tokens, vectors, nil
}
