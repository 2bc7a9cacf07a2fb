package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/viant/wordvec/artifact"
	"github.com/viant/wordvec/engine"
	"github.com/viant/wordvec/index"
	"github.com/viant/wordvec/index/factory"
	"github.com/viant/wordvec/internal/metrics"
	"github.com/viant/wordvec/store"
	"github.com/viant/wordvec/vocab"
)

// loadVocabulary builds the configured vocabulary. It blocks until the index
// is ready; any error means the process must not serve.
func (a *app) loadVocabulary(ctx context.Context) (*vocab.Index, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	opts := []vocab.Option{vocab.WithParallelism(a.cfg.Search.Parallelism)}

	var v *vocab.Index
	if a.cfg.Index.Stored && a.cfg.Vocabulary.Kind() == artifact.TypeSQLite {
		idx, err := a.loadStoredIndex(ctx)
		if err != nil {
			return nil, err
		}
		if v, err = vocab.FromIndex(idx, opts...); err != nil {
			return nil, err
		}
	} else {
		tokens, vectors, err := artifact.Load(ctx, a.cfg.Vocabulary)
		if err != nil {
			return nil, err
		}
		idx, err := factory.New(a.cfg.Index.Kind)
		if err != nil {
			return nil, err
		}
		if v, err = vocab.New(tokens, vectors, append(opts, vocab.WithIndex(idx))...); err != nil {
			return nil, err
		}
	}
	metrics.VocabularySize.Set(float64(v.Len()))
	a.logger.Printf("loaded %d words (dim %d) from %s in %s", v.Len(), v.Dimension(), a.cfg.Vocabulary, time.Since(start))
	return v, nil
}

func (a *app) loadStoredIndex(ctx context.Context) (index.Index, error) {
	s, closeFn, err := a.openStore(ctx, a.cfg.Vocabulary.Path, false)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	idx, err := s.LoadIndex(ctx, a.cfg.Index.Name)
	if err != nil {
		return nil, fmt.Errorf("stored index %q: %w (run wordvec reindex)", a.cfg.Index.Name, err)
	}
	return idx, nil
}

// openStore opens a SQLite store with the vector SQL functions available.
// Unless create is set the database file must already exist.
func (a *app) openStore(ctx context.Context, path string, create bool) (*store.Store, func(), error) {
	if _, err := os.Stat(path); err != nil && !create {
		return nil, nil, err
	}
	if err := engine.RegisterVectorFunctions(nil); err != nil {
		return nil, nil, err
	}
	db, err := engine.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(ctx, db, store.WithLogger(a.logger))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return s, func() { _ = db.Close() }, nil
}
