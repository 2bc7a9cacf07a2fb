package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) reindexCmd() *cobra.Command {
	var name, kind string
	cmd := &cobra.Command{
		Use:   "reindex <store.sqlite>",
		Short: "Rebuild the persisted index blob of a SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, closeFn, err := a.openStore(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			defer closeFn()
			n, err := s.Reindex(cmd.Context(), name, kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reindexed:%d\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "words", "Index name")
	cmd.Flags().StringVar(&kind, "kind", "bruteforce", "Index kind: bruteforce or vptree")
	return cmd
}
