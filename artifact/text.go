package artifact

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/viant/wordvec/vector"
)

const maxLineSize = 1 << 20

// LoadText reads a word2vec or GloVe text file.
func LoadText(path string) ([]string, [][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadText(f)
}

// ReadText parses "token f1 ... fD" lines. A leading "count dim" line, as
// written by word2vec, is honoured and checked against the body.
func ReadText(r io.Reader) ([]string, [][]float32, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var tokens []string
	var vectors [][]float32
	dim, declared := 0, -1
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if line == 1 && len(fields) == 2 {
			n, errN := strconv.Atoi(fields[0])
			d, errD := strconv.Atoi(fields[1])
			if errN == nil && errD == nil {
				declared, dim = n, d
				continue
			}
		}
		if len(fields) < 2 {
			return nil, nil, fmt.Errorf("line %d: token without vector", line)
		}
		if dim == 0 {
			dim = len(fields) - 1
		}
		if len(fields)-1 != dim {
			return nil, nil, fmt.Errorf("line %d: %q has %d components, want %d", line, fields[0], len(fields)-1, dim)
		}
		vec := make([]float32, dim)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d: invalid float %q: %w", line, f, err)
			}
			vec[i] = float32(v)
		}
		if err := vector.CheckFinite(vec); err != nil {
			return nil, nil, fmt.Errorf("line %d: %q: %w", line, fields[0], err)
		}
		tokens = append(tokens, fields[0])
		vectors = append(vectors, vec)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if declared >= 0 && declared != len(tokens) {
		return nil, nil, fmt.Errorf("header declares %d words, found %d", declared, len(tokens))
	}
	return tokens, vectors, nil
}
