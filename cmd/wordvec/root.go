package main

import (
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/viant/wordvec/internal/config"
)

// app carries state shared by every subcommand.
type app struct {
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "wordvec",
		Short: "Word embedding lookup and similarity service",
		Long: `wordvec loads a vocabulary of word embeddings once and answers
vector lookups and cosine nearest-neighbour queries over it.

Vocabularies can be read from a binary matrix file, a word2vec/GloVe text
file, a SQLite store or a pgvector table in PostgreSQL.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			out := io.Discard
			if a.verbose {
				out = cmd.ErrOrStderr()
			}
			a.logger = log.New(out, "[wordvec] ", log.LstdFlags)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "wordvec.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log progress to stderr")

	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.convertCmd())
	rootCmd.AddCommand(a.lookupCmd())
	rootCmd.AddCommand(a.similarCmd())
	rootCmd.AddCommand(a.reindexCmd())
	rootCmd.AddCommand(a.shellCmd())
	return rootCmd
}

// serverLogger always writes, the server's access log is its output.
func (a *app) serverLogger() *log.Logger {
	if a.verbose {
		return a.logger
	}
	return log.New(os.Stdout, "[wordvec] ", log.LstdFlags)
}
