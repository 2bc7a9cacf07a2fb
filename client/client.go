// Package client calls a wordvec HTTP service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/viant/wordvec/vocab"
)

// WordNotFound is the inline error the service reports for unknown words.
const WordNotFound = "word not found"

// VectorResult is one element of a Vectorize response.
type VectorResult struct {
	Word   string    `json:"word"`
	Vector []float32 `json:"vector"`
	Error  string    `json:"error,omitempty"`
}

// SimilarResult is one element of a FindSimilarWords response.
type SimilarResult struct {
	Source string           `json:"source"`
	Result []vocab.Neighbor `json:"result"`
	Error  string           `json:"error,omitempty"`
}

// Health is the service status.
type Health struct {
	Status    string `json:"status"`
	Words     int    `json:"words"`
	Dimension int    `json:"dimension"`
}

type wordsRequest struct {
	Words []string `json:"words"`
}

type similarRequest struct {
	Words               []string `json:"words"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
	Limit               *int     `json:"limit,omitempty"`
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *StatusError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("client: status %d: %s (%s)", e.StatusCode, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("client: status %d: %s", e.StatusCode, e.Message)
}

// Vectorize returns one result per word in request order. Unknown words carry
// an empty vector and WordNotFound.
func (c *Client) Vectorize(ctx context.Context, words []string) ([]VectorResult, error) {
	var out []VectorResult
	if err := c.post(ctx, "/vectors", wordsRequest{Words: words}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindSimilarWords ranks neighbours for each word. A nil threshold or limit
// leaves the choice to the server defaults.
func (c *Client) FindSimilarWords(ctx context.Context, words []string, threshold *float64, limit *int) ([]SimilarResult, error) {
	var out []SimilarResult
	req := similarRequest{Words: words, SimilarityThreshold: threshold, Limit: limit}
	if err := c.post(ctx, "/find_similar_words", req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health returns the service status.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	var out Health
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("client: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		serr := &StatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			serr.Message, serr.Details = e.Error, e.Details
		}
		return serr
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("client: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
