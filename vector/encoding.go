package vector

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EncodeEmbedding encodes a slice of float32 values into a BLOB representation
// suitable for storage in SQLite. The current encoding is a simple
// little-endian sequence of IEEE 754 float32 values without a length prefix;
// the length is derived from the BLOB size on decode.
func EncodeEmbedding(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		bits := math.Float32bits(v)
		binary.LittleEndian.PutUint32(b[i*4:], bits)
	}
	return b, nil
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding back into a
// slice of float32 values.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	n := len(b) / 4
	vec := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}

// EncodeMatrix stores: dim(uint32), n(uint32), then for each row:
// idLen(uint32), id bytes, vec(float32[dim]). All integers are little endian.
func EncodeMatrix(ids []string, vectors [][]float32) ([]byte, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("vector: ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	size := 8
	for j, id := range ids {
		if len(vectors[j]) != dim {
			return nil, fmt.Errorf("vector: inconsistent vector dims %d vs %d at row %d", len(vectors[j]), dim, j)
		}
		size += 4 + len(id) + 4*dim
	}
	out := make([]byte, size)
	off := 0
	putU32 := func(v uint32) { binary.LittleEndian.PutUint32(out[off:], v); off += 4 }
	putU32(uint32(dim))
	putU32(uint32(len(ids)))
	for j, id := range ids {
		putU32(uint32(len(id)))
		off += copy(out[off:], id)
		for _, v := range vectors[j] {
			putU32(math.Float32bits(v))
		}
	}
	return out, nil
}

// DecodeMatrix restores ids and vectors written by EncodeMatrix. Row vectors
// share a single backing array.
func DecodeMatrix(data []byte) ([]string, [][]float32, error) {
	if len(data) < 8 {
		return nil, nil, errors.New("vector: invalid matrix data")
	}
	off := 0
	getU32 := func() uint32 { v := binary.LittleEndian.Uint32(data[off : off+4]); off += 4; return v }
	dim := int(getU32())
	n := int(getU32())
	if n > 0 && (4+4*dim) > 0 && n > (len(data)-8)/(4+4*dim) {
		return nil, nil, fmt.Errorf("vector: matrix header declares %d rows of dim %d, payload is %d bytes", n, dim, len(data))
	}
	ids := make([]string, n)
	vecs := make([][]float32, n)
	backing := make([]float32, n*dim)
	for idx := 0; idx < n; idx++ {
		if off+4 > len(data) {
			return nil, nil, errors.New("vector: truncated matrix")
		}
		idlen := int(getU32())
		if idlen < 0 || off+idlen > len(data) {
			return nil, nil, errors.New("vector: truncated id")
		}
		ids[idx] = string(data[off : off+idlen])
		off += idlen
		if off+4*dim > len(data) {
			return nil, nil, errors.New("vector: truncated vec")
		}
		row := backing[idx*dim : (idx+1)*dim : (idx+1)*dim]
		for j := 0; j < dim; j++ {
			row[j] = math.Float32frombits(getU32())
		}
		if err := CheckFinite(row); err != nil {
			return nil, nil, fmt.Errorf("vector: matrix row %d (%q): %w", idx, ids[idx], err)
		}
		vecs[idx] = row
	}
	if off != len(data) {
		return nil, nil, fmt.Errorf("vector: %d trailing bytes after matrix", len(data)-off)
	}
	return ids, vecs, nil
}

// ParseText decodes a textual vector. Accepted forms are a JSON list
// ("[0.1, 0.2]", also the pgvector text output), a base64 encoded embedding
// BLOB, and a comma separated list of floats. NaN and infinite components
// are rejected.
func ParseText(raw string) ([]float32, error) {
	vec, err := parseText(raw)
	if err != nil {
		return nil, err
	}
	if err := CheckFinite(vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func parseText(raw string) ([]float32, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("vector: text is empty")
	}
	if strings.HasPrefix(s, "[") {
		var floats []float64
		if err := json.Unmarshal([]byte(s), &floats); err != nil {
			return nil, fmt.Errorf("vector: invalid JSON vector: %w", err)
		}
		vec := make([]float32, len(floats))
		for i, f := range floats {
			vec[i] = float32(f)
		}
		return vec, nil
	}
	if !strings.Contains(s, ",") {
		if b, err := base64.StdEncoding.DecodeString(s); err == nil {
			if vec, err := DecodeEmbedding(b); err == nil && len(vec) > 0 {
				return vec, nil
			}
		}
	}
	parts := strings.Split(s, ",")
	vec := make([]float32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		f, err := strconv.ParseFloat(p, 32)
		if err != nil {
			return nil, fmt.Errorf("vector: invalid float %q: %w", p, err)
		}
		vec = append(vec, float32(f))
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("vector: text must be a JSON list, base64 embedding or CSV float list")
	}
	return vec, nil
}
