package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/wordvec/artifact"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordvec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
  read_timeout: 2s
vocabulary:
  type: text
  path: glove.txt
search:
  default_threshold: 0
  default_limit: 0
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, artifact.Source{Type: "text", Path: "glove.txt"}, cfg.Vocabulary)
	assert.Equal(t, 0.0, cfg.Search.DefaultThreshold)
	assert.Equal(t, 0, cfg.Search.DefaultLimit)
	assert.Equal(t, 256, cfg.Search.MaxBatchWords)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAddr, ":7000")
	t.Setenv(EnvVocabType, artifact.TypePostgres)
	t.Setenv(EnvDatabaseURL, "postgres://wordvec@localhost/wordvec")
	t.Setenv(EnvIndexKind, "vptree")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, artifact.TypePostgres, cfg.Vocabulary.Kind())
	assert.Equal(t, "postgres://wordvec@localhost/wordvec", cfg.Vocabulary.DSN)
	assert.Equal(t, "vptree", cfg.Index.Kind)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"threshold above range", func(c *Config) { c.Search.DefaultThreshold = 1.5 }},
		{"negative limit", func(c *Config) { c.Search.DefaultLimit = -1 }},
		{"unknown index", func(c *Config) { c.Index.Kind = "hnsw" }},
		{"postgres without dsn", func(c *Config) { c.Vocabulary = artifact.Source{Type: artifact.TypePostgres} }},
		{"missing path", func(c *Config) { c.Vocabulary.Path = "" }},
		{"unknown source", func(c *Config) { c.Vocabulary.Type = "csv" }},
		{"zero batch", func(c *Config) { c.Search.MaxBatchWords = 0 }},
		{"stored without name", func(c *Config) { c.Index.Stored = true; c.Index.Name = "" }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		assert.Error(t, cfg.Validate(), tc.name)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "wordvec.yaml")
	cfg := Default()
	cfg.Index.Kind = "vptree"
	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
