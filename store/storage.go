package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/viant/wordvec/index"
	"github.com/viant/wordvec/index/factory"
)

// ErrNoIndex reports that no index blob is stored under a name.
var ErrNoIndex = errors.New("store: index not found")

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SaveIndex persists a serialized index under name.
func (s *Store) SaveIndex(ctx context.Context, name, kind string, idx index.Index) error {
	return saveIndex(ctx, s.db, name, kind, idx)
}

func saveIndex(ctx context.Context, ex execer, name, kind string, idx index.Index) error {
	data, err := idx.MarshalBinary()
	if err != nil {
		return fmt.Errorf("store: marshal index %q: %w", name, err)
	}
	_, err = ex.ExecContext(ctx, `INSERT OR REPLACE INTO vector_storage(name, kind, "index", size, updated_at) VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		name, kind, data, idx.Len())
	return err
}

// LoadIndex restores the index stored under name as its recorded kind.
func (s *Store) LoadIndex(ctx context.Context, name string) (index.Index, error) {
	var kind string
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT kind, "index" FROM vector_storage WHERE name = ?`, name).Scan(&kind, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNoIndex, name)
	}
	if err != nil {
		return nil, err
	}
	idx, err := factory.New(kind)
	if err != nil {
		return nil, err
	}
	if err := idx.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("store: index %q: %w", name, err)
	}
	return idx, nil
}

// Reindex rebuilds the index blob stored under name from the words table and
// returns the number of indexed words. The rebuild holds a write reservation
// so concurrent Save calls cannot interleave.
func (s *Store) Reindex(ctx context.Context, name, kind string) (int, error) {
	idx, err := factory.New(kind)
	if err != nil {
		return 0, err
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	// BEGIN IMMEDIATE cooperates with busy_timeout instead of failing on upgrade.
	if _, err := conn.ExecContext(ctx, `BEGIN IMMEDIATE`); err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), `ROLLBACK`)
		}
	}()

	tokens, vectors, err := loadWords(ctx, conn)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, fmt.Errorf("store: reindex %q: no words stored", name)
	}
	if err := idx.Build(tokens, vectors); err != nil {
		return 0, err
	}
	if err := saveIndex(ctx, conn, name, kind, idx); err != nil {
		return 0, err
	}
	if _, err := conn.ExecContext(ctx, `COMMIT`); err != nil {
		return 0, err
	}
	committed = true
	return len(tokens), nil
}
