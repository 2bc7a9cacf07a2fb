package client

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/wordvec/internal/api"
	"github.com/viant/wordvec/internal/config"
	"github.com/viant/wordvec/vocab"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	v, err := vocab.New([]string{"cat", "dog", "car"}, [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}})
	require.NoError(t, err)
	s, err := api.New(v, config.Default(), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestVectorize(t *testing.T) {
	c := New(newServer(t).URL + "/")
	got, err := c.Vectorize(context.Background(), []string{"Cat", "UNKNOWNWORD"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{1, 0}, got[0].Vector)
	assert.Equal(t, WordNotFound, got[1].Error)
	assert.Empty(t, got[1].Vector)
}

func TestFindSimilarWords(t *testing.T) {
	c := New(newServer(t).URL)
	threshold, limit := 0.5, 0
	got, err := c.FindSimilarWords(context.Background(), []string{"cat", "UNKNOWNWORD"}, &threshold, &limit)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Len(t, got[0].Result, 1)
	assert.Equal(t, "dog", got[0].Result[0].Word)
	assert.Equal(t, WordNotFound, got[1].Error)

	got, err = c.FindSimilarWords(context.Background(), []string{"cat"}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got[0].Result, 1)
}

func TestStatusError(t *testing.T) {
	c := New(newServer(t).URL)
	_, err := c.Vectorize(context.Background(), nil)
	var serr *StatusError
	require.True(t, errors.As(err, &serr), "err = %v", err)
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
	assert.Equal(t, "invalid request", serr.Message)
	assert.NotEmpty(t, serr.Details)
}

func TestWireCompatibility(t *testing.T) {
	assert.Equal(t, api.ErrWordNotFound, WordNotFound)
}

func TestHealth(t *testing.T) {
	c := New(newServer(t).URL)
	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, h.Words)
}

func TestCanceled(t *testing.T) {
	c := New(newServer(t).URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Vectorize(ctx, []string{"cat"})
	assert.ErrorIs(t, err, context.Canceled)
}
