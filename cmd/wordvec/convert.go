package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viant/wordvec/artifact"
)

func (a *app) convertCmd() *cobra.Command {
	var from artifact.Source
	var to, toType, indexName, indexKind string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a vocabulary into a binary artifact or a SQLite store",
		Long: `Convert reads a vocabulary from any supported source and writes it as a
binary matrix file or into a SQLite store.

Examples:
  wordvec convert --from glove.6B.300d.txt --to glove.bin
  wordvec convert --from-type postgres --from-dsn "$DATABASE_URL" --to words.sqlite --index-name words`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if from.Path == "" && from.DSN == "" {
				return fmt.Errorf("--from or --from-dsn is required")
			}
			tokens, vectors, err := artifact.Load(cmd.Context(), from)
			if err != nil {
				return err
			}
			out := artifact.Source{Type: toType, Path: to}
			switch out.Kind() {
			case artifact.TypeBinary:
				if err := artifact.WriteBinary(to, tokens, vectors); err != nil {
					return err
				}
			case artifact.TypeSQLite:
				s, closeFn, err := a.openStore(cmd.Context(), to, true)
				if err != nil {
					return err
				}
				defer closeFn()
				if err := s.Save(cmd.Context(), tokens, vectors); err != nil {
					return err
				}
				if indexName != "" {
					if _, err := s.Reindex(cmd.Context(), indexName, indexKind); err != nil {
						return err
					}
				}
			default:
				return fmt.Errorf("unsupported output type %q", out.Kind())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted %d words (dim %d) from %s to %s\n", len(tokens), len(vectors[0]), from, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&from.Path, "from", "", "Input file")
	cmd.Flags().StringVar(&from.Type, "from-type", "", "Input type: binary, text, sqlite, postgres (default: by extension)")
	cmd.Flags().StringVar(&from.DSN, "from-dsn", "", "PostgreSQL connection string")
	cmd.Flags().StringVar(&from.Table, "from-table", "", "pgvector table (default Navec)")
	cmd.Flags().StringVar(&to, "to", "", "Output file")
	cmd.Flags().StringVar(&toType, "to-type", "", "Output type: binary or sqlite (default: by extension)")
	cmd.Flags().StringVar(&indexName, "index-name", "", "Also persist an index blob under this name (sqlite output)")
	cmd.Flags().StringVar(&indexKind, "index-kind", "bruteforce", "Kind of the persisted index")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
