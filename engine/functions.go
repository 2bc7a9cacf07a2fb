package engine

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"sync"

	sqlite "modernc.org/sqlite"

	"github.com/viant/wordvec/vector"
)

var registerOnce sync.Once
var registerErr error

// RegisterVectorFunctions registers vec_cosine and vec_l2 with the driver so
// they are available on new connections opened after this call.
// Existing open connections will not see new functions.
func RegisterVectorFunctions(_ *sql.DB) error {
	registerOnce.Do(func() {
		for name, fn := range map[string]func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error){
			"vec_cosine": vecCosineImpl,
			"vec_l2":     vecL2Impl,
		} {
			if err := sqlite.RegisterDeterministicScalarFunction(name, 2, fn); err != nil && !strings.Contains(err.Error(), "already") {
				registerErr = fmt.Errorf("engine: register %s: %w", name, err)
				return
			}
		}
	})
	return registerErr
}

func asEmbedding(arg driver.Value) ([]float32, error) {
	switch v := arg.(type) {
	case nil:
		return nil, nil
	case []byte:
		return vector.DecodeEmbedding(v)
	case string:
		return vector.ParseText(v)
	default:
		return nil, fmt.Errorf("engine: unsupported argument type %T for embedding; want BLOB", arg)
	}
}

func binaryArgs(name string, args []driver.Value) ([]float32, []float32, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
	}
	a, err := asEmbedding(args[0])
	if err != nil {
		return nil, nil, err
	}
	b, err := asEmbedding(args[1])
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// vecCosineImpl scores zero-magnitude operands as 0 rather than failing the
// statement, matching the in-memory index.
func vecCosineImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := binaryArgs("vec_cosine", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	sim, err := vector.CosineSimilarity(a, b)
	if errors.Is(err, vector.ErrZeroMagnitude) {
		return float64(0), nil
	}
	if err != nil {
		return nil, err
	}
	return sim, nil
}

func vecL2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	a, b, err := binaryArgs("vec_l2", args)
	if err != nil || a == nil || b == nil {
		return nil, err
	}
	d, err := vector.L2Distance(a, b)
	if err != nil {
		return nil, err
	}
	return d, nil
}
