package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/viant/wordvec/vocab"
)

const shellHelp = `commands:
  vec <word>...                      print vectors
  sim <word> [threshold] [limit]     print similar words
  help                               show this help
  quit                               exit`

func (a *app) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Query the vocabulary interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.loadVocabulary(cmd.Context())
			if err != nil {
				return err
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "wordvec> ",
				HistoryFile:     historyFilePath(),
				HistoryLimit:    1000,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			defer rl.Close()

			fmt.Fprintf(rl.Stdout(), "%d words, dimension %d. Type help for commands.\n", v.Len(), v.Dimension())
			for {
				line, err := rl.Readline()
				if err == readline.ErrInterrupt {
					continue
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				if !a.execLine(cmd.Context(), rl.Stdout(), v, line) {
					return nil
				}
			}
		},
	}
}

// execLine runs one shell command and reports whether the shell continues.
func (a *app) execLine(ctx context.Context, w io.Writer, v *vocab.Index, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "quit", "exit":
		return false
	case "help":
		fmt.Fprintln(w, shellHelp)
	case "vec":
		for _, e := range v.BatchLookup(fields[1:]) {
			printLookup(w, e)
		}
	case "sim":
		if len(fields) < 2 || len(fields) > 4 {
			fmt.Fprintln(w, "usage: sim <word> [threshold] [limit]")
			return true
		}
		threshold, limit := a.cfg.Search.DefaultThreshold, a.cfg.Search.DefaultLimit
		var err error
		if len(fields) > 2 {
			if threshold, err = strconv.ParseFloat(fields[2], 64); err != nil {
				fmt.Fprintf(w, "invalid threshold %q\n", fields[2])
				return true
			}
		}
		if len(fields) > 3 {
			if limit, err = strconv.Atoi(fields[3]); err != nil {
				fmt.Fprintf(w, "invalid limit %q\n", fields[3])
				return true
			}
		}
		neighbors, err := v.FindSimilar(ctx, fields[1], threshold, limit)
		printSimilar(w, fields[1], neighbors, err)
	default:
		fmt.Fprintf(w, "unknown command %q, type help\n", fields[0])
	}
	return true
}

func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wordvec_history")
}
