package api

import "github.com/viant/wordvec/vocab"

// ErrWordNotFound is the inline error text for unknown words.
const ErrWordNotFound = "word not found"

// WordsRequest is the body of POST /vectors.
type WordsRequest struct {
	Words []string `json:"words"`
}

// SimilarRequest is the body of POST /find_similar_words. Absent fields take
// the configured defaults; a limit of 0 requests every match.
type SimilarRequest struct {
	Words               []string `json:"words"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	Limit               *int     `json:"limit,omitempty"`
}

// VectorResult is one element of the POST /vectors response.
type VectorResult struct {
	Word   string    `json:"word"`
	Vector []float32 `json:"vector"`
	Error  string    `json:"error,omitempty"`
}

// SimilarResult is one element of the POST /find_similar_words response.
type SimilarResult struct {
	Source string           `json:"source"`
	Result []vocab.Neighbor `json:"result"`
	Error  string           `json:"error,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Words     int    `json:"words"`
	Dimension int    `json:"dimension"`
}
