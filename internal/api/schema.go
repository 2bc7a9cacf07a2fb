package api

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const wordsSchema = `{
  "type": "object",
  "required": ["words"],
  "properties": {
    "words": {
      "type": "array",
      "minItems": 1,
      "maxItems": %d,
      "items": {"type": "string", "minLength": 1}
    }
  }
}`

const similarSchema = `{
  "type": "object",
  "required": ["words"],
  "properties": {
    "words": {
      "type": "array",
      "minItems": 1,
      "maxItems": %d,
      "items": {"type": "string", "minLength": 1}
    },
    "similarity_threshold": {"type": "number", "minimum": -1, "maximum": 1},
    "limit": {"type": "integer", "minimum": 0}
  }
}`

// validator checks request bodies against a compiled JSON schema.
type validator struct {
	schema *gojsonschema.Schema
}

func newValidator(schema string, maxWords int) (*validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(fmt.Sprintf(schema, maxWords)))
	if err != nil {
		return nil, fmt.Errorf("api: compile schema: %w", err)
	}
	return &validator{schema: s}, nil
}

// validate returns the schema violations of body; err is set when body is
// not JSON at all.
func (v *validator) validate(body []byte) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, err
	}
	if result.Valid() {
		return nil, nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return details, nil
}
