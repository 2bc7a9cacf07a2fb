package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/mmap"

	"github.com/viant/wordvec/engine"
	"github.com/viant/wordvec/store"
	"github.com/viant/wordvec/vector"
)

// Source types.
const (
	TypeBinary   = "binary"
	TypeText     = "text"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Source describes where a vocabulary is read from.
type Source struct {
	Type string `yaml:"type"`
	// Path is the file for binary, text and sqlite sources.
	Path string `yaml:"path"`
	// DSN and Table address a postgres source.
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// Kind returns the explicit type or one inferred from the path extension.
func (s Source) Kind() string {
	if s.Type != "" {
		return s.Type
	}
	if s.DSN != "" {
		return TypePostgres
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".txt", ".vec", ".glove":
		return TypeText
	case ".sqlite", ".db":
		return TypeSQLite
	}
	return TypeBinary
}

func (s Source) String() string {
	if s.Kind() == TypePostgres {
		return TypePostgres + ":" + s.Table
	}
	return s.Kind() + ":" + s.Path
}

// Load reads the vocabulary from src.
func Load(ctx context.Context, src Source) ([]string, [][]float32, error) {
	var tokens []string
	var vectors [][]float32
	var err error
	switch kind := src.Kind(); kind {
	case TypeBinary:
		tokens, vectors, err = LoadBinary(src.Path)
	case TypeText:
		tokens, vectors, err = LoadText(src.Path)
	case TypeSQLite:
		tokens, vectors, err = loadSQLite(ctx, src.Path)
	case TypePostgres:
		tokens, vectors, err = store.LoadPostgres(ctx, store.PostgresSource{DSN: src.DSN, Table: src.Table})
	default:
		return nil, nil, fmt.Errorf("artifact: unsupported source type %q", kind)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("artifact: load %s: %w", src, err)
	}
	if len(tokens) == 0 {
		return nil, nil, fmt.Errorf("artifact: load %s: no words", src)
	}
	return tokens, vectors, nil
}

// LoadBinary memory maps a matrix file written by WriteBinary and decodes it.
func LoadBinary(path string) ([]string, [][]float32, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap file: %w", err)
	}
	defer r.Close()
	data := make([]byte, r.Len())
	if _, err := r.ReadAt(data, 0); err != nil {
		return nil, nil, fmt.Errorf("read mmap: %w", err)
	}
	return vector.DecodeMatrix(data)
}

// WriteBinary writes the matrix format atomically through a temporary file.
func WriteBinary(path string, tokens []string, vectors [][]float32) error {
	data, err := vector.EncodeMatrix(tokens, vectors)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func loadSQLite(ctx context.Context, path string) ([]string, [][]float32, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}
	db, err := engine.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer db.Close()
	s, err := store.New(ctx, db)
	if err != nil {
		return nil, nil, err
	}
	return s.Load(ctx)
}
