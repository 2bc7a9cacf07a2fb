package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viant/wordvec/artifact"
	"github.com/viant/wordvec/index/factory"
)

// Environment overrides.
const (
	EnvAddr        = "WORDVEC_ADDR"
	EnvVocabType   = "WORDVEC_VOCAB_TYPE"
	EnvVocabPath   = "WORDVEC_VOCAB_PATH"
	EnvDatabaseURL = "DATABASE_URL"
	EnvIndexKind   = "WORDVEC_INDEX_KIND"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

// IndexConfig selects the search structure. When Stored is set and the
// vocabulary comes from SQLite, the blob persisted under Name is used instead
// of rebuilding.
type IndexConfig struct {
	Kind   string `yaml:"kind"`
	Name   string `yaml:"name"`
	Stored bool   `yaml:"stored"`
}

// SearchConfig holds query defaults and bounds.
type SearchConfig struct {
	DefaultThreshold float64       `yaml:"default_threshold"`
	DefaultLimit     int           `yaml:"default_limit"`
	MaxBatchWords    int           `yaml:"max_batch_words"`
	Parallelism      int           `yaml:"parallelism"`
	QueryTimeout     time.Duration `yaml:"query_timeout"`
}

// Config is the root configuration.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Vocabulary artifact.Source `yaml:"vocabulary"`
	Index      IndexConfig     `yaml:"index"`
	Search     SearchConfig    `yaml:"search"`
}

// Load reads a config from path. A missing file yields defaults; keys absent
// from the file keep their default values. Environment overrides are applied
// last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
			AllowedOrigins:  []string{"*"},
		},
		Vocabulary: artifact.Source{Path: "navec.bin"},
		Index:      IndexConfig{Kind: factory.BruteForce, Name: "words"},
		Search: SearchConfig{
			DefaultThreshold: 0.6,
			DefaultLimit:     10,
			MaxBatchWords:    256,
			QueryTimeout:     10 * time.Second,
		},
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvVocabType); v != "" {
		c.Vocabulary.Type = v
	}
	if v := os.Getenv(EnvVocabPath); v != "" {
		c.Vocabulary.Path = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Vocabulary.DSN = v
	}
	if v := os.Getenv(EnvIndexKind); v != "" {
		c.Index.Kind = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("config: server.max_body_bytes must be positive")
	}
	switch kind := c.Vocabulary.Kind(); kind {
	case artifact.TypeBinary, artifact.TypeText, artifact.TypeSQLite:
		if c.Vocabulary.Path == "" {
			return fmt.Errorf("config: vocabulary.path is required for %s sources", kind)
		}
	case artifact.TypePostgres:
		if c.Vocabulary.DSN == "" {
			return fmt.Errorf("config: vocabulary.dsn or %s is required for postgres sources", EnvDatabaseURL)
		}
	default:
		return fmt.Errorf("config: unsupported vocabulary.type %q", kind)
	}
	if _, err := factory.New(c.Index.Kind); err != nil {
		return fmt.Errorf("config: index.kind: %w", err)
	}
	if c.Index.Stored && c.Index.Name == "" {
		return errors.New("config: index.name is required when index.stored is set")
	}
	if t := c.Search.DefaultThreshold; math.IsNaN(t) || t < -1 || t > 1 {
		return fmt.Errorf("config: search.default_threshold %v outside [-1, 1]", t)
	}
	if c.Search.DefaultLimit < 0 {
		return errors.New("config: search.default_limit must not be negative")
	}
	if c.Search.MaxBatchWords <= 0 {
		return errors.New("config: search.max_batch_words must be positive")
	}
	if c.Search.Parallelism < 0 {
		return errors.New("config: search.parallelism must not be negative")
	}
	return nil
}
