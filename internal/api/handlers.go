package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/viant/wordvec/internal/metrics"
	"github.com/viant/wordvec/vocab"
)

// jsonResponse sends a standard JSON response. Headers are already written
// when encoding fails, so the failure is only logged.
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("encode response %s [%s]: %v", r.URL.Path, RequestID(r.Context()), err)
	}
}

// errorResponse sends a standard error response
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, msg string, details ...string) {
	s.jsonResponse(w, r, status, ErrorResponse{Error: msg, Details: details, RequestID: RequestID(r.Context())})
}

// readBody reads and schema-checks a request body. On failure the error
// response has been written and ok is false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, v *validator, dest interface{}) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.server.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.errorResponse(w, r, http.StatusBadRequest, "failed to read request body")
		return false
	}
	details, err := v.validate(body)
	if err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if len(details) > 0 {
		s.errorResponse(w, r, http.StatusBadRequest, "invalid request", details...)
		return false
	}
	if err := json.Unmarshal(body, dest); err != nil {
		s.errorResponse(w, r, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}

// handleHealth - GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, r, http.StatusOK, HealthResponse{Status: "ok", Words: s.vocab.Len(), Dimension: s.vocab.Dimension()})
}

// handleVector - GET /vector?word=w
func (s *Server) handleVector(w http.ResponseWriter, r *http.Request) {
	word := r.URL.Query().Get("word")
	if word == "" {
		s.errorResponse(w, r, http.StatusBadRequest, "query parameter word is required")
		return
	}
	defer metrics.ObserveQuery("vector", time.Now())
	vec, ok := s.vocab.Lookup(word)
	if !ok {
		metrics.UnknownTokensTotal.WithLabelValues("vector").Inc()
		vec = []float32{}
	}
	s.jsonResponse(w, r, http.StatusOK, vec)
}

// handleVectors - POST /vectors
func (s *Server) handleVectors(w http.ResponseWriter, r *http.Request) {
	var req WordsRequest
	if !s.readBody(w, r, s.words, &req) {
		return
	}
	start := time.Now()
	out := make([]VectorResult, len(req.Words))
	for i, word := range req.Words {
		out[i].Word = word
		vec, ok := s.vocab.Lookup(word)
		if !ok {
			metrics.UnknownTokensTotal.WithLabelValues("vectors").Inc()
			out[i].Vector = []float32{}
			out[i].Error = ErrWordNotFound
			continue
		}
		out[i].Vector = vec
	}
	metrics.ObserveQuery("vectors", start)
	s.jsonResponse(w, r, http.StatusOK, out)
}

// handleFindSimilar - POST /find_similar_words, POST /find_closest_words
func (s *Server) handleFindSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if !s.readBody(w, r, s.similar, &req) {
		return
	}
	threshold := s.search.DefaultThreshold
	if req.SimilarityThreshold != nil {
		threshold = *req.SimilarityThreshold
	}
	limit := s.search.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	ctx := r.Context()
	if s.search.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.search.QueryTimeout)
		defer cancel()
	}
	start := time.Now()
	results := s.vocab.FindSimilarBatch(ctx, req.Words, threshold, limit)
	metrics.ObserveQuery("find_similar", start)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.errorResponse(w, r, http.StatusGatewayTimeout, "query timed out")
		return
	}

	out := make([]SimilarResult, len(results))
	for i, res := range results {
		out[i] = SimilarResult{Source: res.Source, Result: res.Neighbors}
		if res.Err == nil {
			continue
		}
		out[i].Result = []vocab.Neighbor{}
		if errors.Is(res.Err, vocab.ErrUnknownToken) {
			metrics.UnknownTokensTotal.WithLabelValues("find_similar").Inc()
			out[i].Error = ErrWordNotFound
			continue
		}
		s.logger.Printf("find_similar %q [%s]: %v", res.Source, RequestID(r.Context()), res.Err)
		out[i].Error = res.Err.Error()
	}
	s.jsonResponse(w, r, http.StatusOK, out)
}
