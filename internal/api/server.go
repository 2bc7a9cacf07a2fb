package api

import (
	"context"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/viant/wordvec/internal/config"
	"github.com/viant/wordvec/vocab"
)

// Vocabulary is the read-only query surface the handlers need.
type Vocabulary interface {
	Len() int
	Dimension() int
	Lookup(token string) ([]float32, bool)
	FindSimilarBatch(ctx context.Context, tokens []string, threshold float64, limit int) []vocab.SimilarResult
}

var _ Vocabulary = (*vocab.Index)(nil)

// Server serves a Vocabulary over HTTP.
type Server struct {
	vocab   Vocabulary
	server  config.ServerConfig
	search  config.SearchConfig
	logger  *log.Logger
	words   *validator
	similar *validator
}

// New creates a Server. cfg must already be validated.
func New(v Vocabulary, cfg *config.Config, logger *log.Logger) (*Server, error) {
	words, err := newValidator(wordsSchema, cfg.Search.MaxBatchWords)
	if err != nil {
		return nil, err
	}
	similar, err := newValidator(similarSchema, cfg.Search.MaxBatchWords)
	if err != nil {
		return nil, err
	}
	return &Server{
		vocab:   v,
		server:  cfg.Server,
		search:  cfg.Search,
		logger:  logger,
		words:   words,
		similar: similar,
	}, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /vector", s.handleVector)
	mux.HandleFunc("POST /vectors", s.handleVectors)
	mux.HandleFunc("POST /find_similar_words", s.handleFindSimilar)
	mux.HandleFunc("POST /find_closest_words", s.handleFindSimilar)
	return MiddlewareChain(mux, s.server.AllowedOrigins, s.logger)
}

// HTTPServer returns an http.Server bound to the configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.server.ReadTimeout,
		WriteTimeout: s.server.WriteTimeout,
		IdleTimeout:  s.server.IdleTimeout,
		ErrorLog:     s.logger,
	}
}
