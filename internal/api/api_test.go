package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/wordvec/index/vptree"
	"github.com/viant/wordvec/internal/config"
	"github.com/viant/wordvec/internal/metrics"
	"github.com/viant/wordvec/vocab"
)

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *httptest.Server {
	t.Helper()
	v, err := vocab.New([]string{"cat", "dog", "car"}, [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}})
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Search.MaxBatchWords = 4
	for _, m := range mutate {
		m(cfg)
	}
	s, err := New(v, cfg, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestVectors(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/vectors", `{"words": ["CAT", "UNKNOWNWORD", "dog"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []VectorResult
	decode(t, resp, &got)
	require.Len(t, got, 3)
	assert.Equal(t, VectorResult{Word: "CAT", Vector: []float32{1, 0}}, got[0])
	assert.Equal(t, "UNKNOWNWORD", got[1].Word)
	assert.Equal(t, []float32{}, got[1].Vector)
	assert.Equal(t, ErrWordNotFound, got[1].Error)
	assert.Equal(t, "dog", got[2].Word)
}

func TestVectors_EmptyArrayOnTheWire(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/vectors", `{"words": ["nope"]}`)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"word":"nope","vector":[],"error":"word not found"}]`, string(body))
}

func TestFindSimilar(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/find_similar_words", "/find_closest_words"} {
		resp := post(t, ts, path, `{"words": ["cat", "UNKNOWNWORD", "car"], "similarity_threshold": 0.5}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got []SimilarResult
		decode(t, resp, &got)
		require.Len(t, got, 3)
		assert.Equal(t, "cat", got[0].Source)
		require.Len(t, got[0].Result, 1)
		assert.Equal(t, "dog", got[0].Result[0].Word)
		assert.InDelta(t, 0.994, got[0].Result[0].Similarity, 1e-3)
		assert.Empty(t, got[0].Error)

		assert.Equal(t, "UNKNOWNWORD", got[1].Source)
		assert.Equal(t, []vocab.Neighbor{}, got[1].Result)
		assert.Equal(t, ErrWordNotFound, got[1].Error)

		assert.Equal(t, "car", got[2].Source)
		assert.Equal(t, []vocab.Neighbor{}, got[2].Result)
		assert.Empty(t, got[2].Error)
	}
}

func TestFindSimilar_DefaultsAndLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Search.DefaultLimit = 1 })

	// default threshold 0.6 keeps dog only
	var got []SimilarResult
	decode(t, post(t, ts, "/find_similar_words", `{"words": ["cat"]}`), &got)
	require.Len(t, got[0].Result, 1)

	decode(t, post(t, ts, "/find_similar_words", `{"words": ["cat"], "similarity_threshold": -1}`), &got)
	require.Len(t, got[0].Result, 1)

	decode(t, post(t, ts, "/find_similar_words", `{"words": ["cat"], "similarity_threshold": -1, "limit": 0}`), &got)
	require.Len(t, got[0].Result, 2)
	assert.Equal(t, "dog", got[0].Result[0].Word)
	assert.Equal(t, "car", got[0].Result[1].Word)
}

func TestValidation(t *testing.T) {
	ts := newTestServer(t)
	cases := []struct {
		name string
		path string
		body string
	}{
		{"missing words", "/vectors", `{}`},
		{"words not array", "/vectors", `{"words": "cat"}`},
		{"empty word", "/vectors", `{"words": [""]}`},
		{"no words", "/find_similar_words", `{"words": []}`},
		{"too many words", "/find_similar_words", `{"words": ["a","b","c","d","e"]}`},
		{"threshold range", "/find_similar_words", `{"words": ["cat"], "similarity_threshold": 2}`},
		{"negative limit", "/find_similar_words", `{"words": ["cat"], "limit": -1}`},
		{"fractional limit", "/find_similar_words", `{"words": ["cat"], "limit": 1.5}`},
		{"not json", "/vectors", `{"words": [`},
	}
	for _, tc := range cases {
		resp := post(t, ts, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.name)
		var e ErrorResponse
		decode(t, resp, &e)
		assert.NotEmpty(t, e.Error, tc.name)
		assert.NotEmpty(t, e.RequestID, tc.name)
	}
}

func TestBodyLimit(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.Server.MaxBodyBytes = 16 })
	resp := post(t, ts, "/vectors", `{"words": ["cat", "dog"]}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestVector(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/vector?word=Dog")
	require.NoError(t, err)
	defer resp.Body.Close()
	var vec []float32
	decode(t, resp, &vec)
	assert.Equal(t, []float32{0.9, 0.1}, vec)

	resp2, err := http.Get(ts.URL + "/vector?word=UNKNOWNWORD")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body, _ := io.ReadAll(resp2.Body)
	assert.JSONEq(t, `[]`, string(body))

	resp3, err := http.Get(ts.URL + "/vector")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	var h HealthResponse
	decode(t, resp, &h)
	assert.Equal(t, HealthResponse{Status: "ok", Words: 3, Dimension: 2}, h)

	resp2, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body, _ := io.ReadAll(resp2.Body)
	assert.Contains(t, string(body), "wordvec_http_requests_total")
}

func TestMiddleware(t *testing.T) {
	ts := newTestServer(t)
	metrics.HTTPRequestsTotal.Reset()

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/vectors", bytes.NewBufferString(`{"words":["cat"]}`))
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "req-1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("POST", "POST /vectors", "200")))

	preflight, err := http.NewRequest(http.MethodOptions, ts.URL+"/vectors", nil)
	require.NoError(t, err)
	resp2, err := http.DefaultClient.Do(preflight)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp2.StatusCode)
	assert.NotEmpty(t, resp2.Header.Get(RequestIDHeader))
}

type slowVocabulary struct{ *vocab.Index }

func (s slowVocabulary) FindSimilarBatch(ctx context.Context, tokens []string, threshold float64, limit int) []vocab.SimilarResult {
	<-ctx.Done()
	return s.Index.FindSimilarBatch(ctx, tokens, threshold, limit)
}

func TestFindSimilar_Timeout(t *testing.T) {
	v, err := vocab.New([]string{"cat"}, [][]float32{{1, 0}})
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Search.QueryTimeout = 10 * time.Millisecond
	s, err := New(slowVocabulary{v}, cfg, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := post(t, ts, "/find_similar_words", `{"words": ["cat"]}`)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestFindSimilar_MaxIntLimit(t *testing.T) {
	v, err := vocab.New([]string{"cat", "dog", "car"}, [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}}, vocab.WithIndex(&vptree.Index{}))
	require.NoError(t, err)
	s, err := New(v, config.Default(), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp := post(t, ts, "/find_similar_words", `{"words": ["cat"], "similarity_threshold": 0.5, "limit": 9223372036854775807}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got []SimilarResult
	decode(t, resp, &got)
	require.Len(t, got, 1)
	require.Len(t, got[0].Result, 1)
	assert.Equal(t, "dog", got[0].Result[0].Word)
}

type nanVocabulary struct{ *vocab.Index }

func (n nanVocabulary) Lookup(string) ([]float32, bool) {
	return []float32{float32(math.NaN())}, true
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestEncodeFailureLogged(t *testing.T) {
	v, err := vocab.New([]string{"cat"}, [][]float32{{1, 0}})
	require.NoError(t, err)
	var logs syncBuffer
	s, err := New(nanVocabulary{v}, config.Default(), log.New(&logs, "", 0))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/vector?word=cat", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "req-nan")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "encode response /vector [req-nan]")
	}, time.Second, 10*time.Millisecond)
}
