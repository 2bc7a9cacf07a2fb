package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viant/wordvec/artifact"
	"github.com/viant/wordvec/vocab"
)

const (
	engineIndex = "index"
	engineSQL   = "sql"
)

func (a *app) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <word>...",
		Short: "Print the vectors of words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.loadVocabulary(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range v.BatchLookup(args) {
				printLookup(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}
}

type similarFlags struct {
	threshold float64
	limit     int
	engine    string
}

func (a *app) similarCmd() *cobra.Command {
	var f similarFlags
	cmd := &cobra.Command{
		Use:   "similar <word>...",
		Short: "Print the most similar vocabulary words",
		Long: `Similar ranks the vocabulary by cosine similarity to each word.

With --engine sql the ranking runs inside a SQLite store through the
vec_cosine SQL function instead of the in-memory index; the vocabulary
source must then be a SQLite file.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				f.threshold = a.cfg.Search.DefaultThreshold
			}
			if !cmd.Flags().Changed("limit") {
				f.limit = a.cfg.Search.DefaultLimit
			}
			switch f.engine {
			case engineIndex:
				v, err := a.loadVocabulary(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range v.FindSimilarBatch(cmd.Context(), args, f.threshold, f.limit) {
					printSimilar(cmd.OutOrStdout(), r.Source, r.Neighbors, r.Err)
				}
				return nil
			case engineSQL:
				return a.similarSQL(cmd.Context(), cmd.OutOrStdout(), args, f)
			}
			return fmt.Errorf("unknown engine %q (want %s or %s)", f.engine, engineIndex, engineSQL)
		},
	}
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0.6, "Minimum cosine similarity (default from config)")
	cmd.Flags().IntVar(&f.limit, "limit", vocab.DefaultLimit, "Maximum neighbours per word, 0 for all (default from config)")
	cmd.Flags().StringVar(&f.engine, "engine", engineIndex, "Ranking engine: index or sql")
	return cmd
}

func (a *app) similarSQL(ctx context.Context, w io.Writer, words []string, f similarFlags) error {
	if a.cfg.Vocabulary.Kind() != artifact.TypeSQLite {
		return fmt.Errorf("--engine sql needs a sqlite vocabulary, have %s", a.cfg.Vocabulary)
	}
	s, closeFn, err := a.openStore(ctx, a.cfg.Vocabulary.Path, false)
	if err != nil {
		return err
	}
	defer closeFn()
	for _, word := range words {
		neighbors, err := s.Closest(ctx, word, f.threshold, f.limit)
		if err != nil && !errors.Is(err, vocab.ErrUnknownToken) {
			return err
		}
		printSimilar(w, word, neighbors, err)
	}
	return nil
}

func printLookup(w io.Writer, e vocab.Entry) {
	if !e.Found {
		fmt.Fprintf(w, "%s\tnot found\n", e.Token)
		return
	}
	parts := make([]string, len(e.Vector))
	for i, f := range e.Vector {
		parts[i] = fmt.Sprintf("%g", f)
	}
	fmt.Fprintf(w, "%s\t[%s]\n", e.Token, strings.Join(parts, " "))
}

func printSimilar(w io.Writer, source string, neighbors []vocab.Neighbor, err error) {
	switch {
	case errors.Is(err, vocab.ErrUnknownToken):
		fmt.Fprintf(w, "%s\tnot found\n", source)
		return
	case err != nil:
		fmt.Fprintf(w, "%s\terror: %v\n", source, err)
		return
	}
	fmt.Fprintf(w, "%s\n", source)
	for _, n := range neighbors {
		fmt.Fprintf(w, "  %-24s %.4f\n", n.Word, n.Similarity)
	}
}
