// Package config loads runtime configuration for appealsnavigator-rag.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config captures all runtime configuration for the application.
type Config struct {
	DataRoot  string          `yaml:"dataRoot"`
	Addr      string          `yaml:"addr"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Search    SearchConfig    `yaml:"search"`
	Assembler AssemblerConfig `yaml:"assembler"`
	Watch     WatchConfig     `yaml:"watch"`
}

// EmbeddingConfig describes the embedding backend and its rate/retry policy.
type EmbeddingConfig struct {
	DelayMs     int    `yaml:"delayMs"`
	MaxRetries  int    `yaml:"maxRetries"`
	RetryBaseMs int    `yaml:"retryBaseMs"`
	Model       string `yaml:"model"`
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"apiKey"`
}

// ChunkerConfig controls the chunking character budget.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunkSize"`
	Overlap   int `yaml:"overlap"`
}

// SearchConfig holds the search.defaultLimit option. The Searcher does not
// read it: a request without a limit uses the Searcher's own default of 10.
type SearchConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
}

// AssemblerConfig bounds the assembled context pack.
type AssemblerConfig struct {
	MaxContextLength int `yaml:"maxContextLength"`
}

// WatchConfig controls the optional file-watcher auto-reindex feature.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a Config populated with spec defaults.
func Default() Config {
	return Config{
		DataRoot: "./data",
		Addr:     "127.0.0.1:8080",
		Embedding: EmbeddingConfig{
			DelayMs:     100,
			MaxRetries:  3,
			RetryBaseMs: 1000,
		},
		Chunker: ChunkerConfig{
			ChunkSize: 1000,
			Overlap:   100,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
		},
		Assembler: AssemblerConfig{
			MaxContextLength: 4000,
		},
		Watch: WatchConfig{
			Enabled: false,
		},
	}
}

// Load reads an optional YAML config file at path, then applies
// environment variable overrides on top, and validates the result.
// A missing file is not an error; defaults are used instead.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	abs, err := filepath.Abs(cfg.DataRoot)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data root: %w", err)
	}
	cfg.DataRoot = abs

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies RAG_* environment variable overrides, the
// highest-precedence layer.
func (c *Config) applyEnvOverrides() {
	c.DataRoot = getEnv("RAG_DATA_ROOT", c.DataRoot)
	c.Addr = getEnv("RAG_ADDR", c.Addr)

	c.Embedding.DelayMs = getEnvInt("RAG_EMBEDDING_DELAY_MS", c.Embedding.DelayMs)
	c.Embedding.MaxRetries = getEnvInt("RAG_EMBEDDING_MAX_RETRIES", c.Embedding.MaxRetries)
	c.Embedding.RetryBaseMs = getEnvInt("RAG_EMBEDDING_RETRY_BASE_MS", c.Embedding.RetryBaseMs)
	c.Embedding.Model = getEnv("RAG_EMBEDDING_MODEL", c.Embedding.Model)
	c.Embedding.Endpoint = getEnv("RAG_EMBEDDING_ENDPOINT", c.Embedding.Endpoint)
	c.Embedding.APIKey = getEnv("RAG_EMBEDDING_API_KEY", c.Embedding.APIKey)

	c.Chunker.ChunkSize = getEnvInt("RAG_CHUNK_SIZE", c.Chunker.ChunkSize)
	c.Chunker.Overlap = getEnvInt("RAG_CHUNK_OVERLAP", c.Chunker.Overlap)

	c.Search.DefaultLimit = getEnvInt("RAG_SEARCH_DEFAULT_LIMIT", c.Search.DefaultLimit)
	c.Assembler.MaxContextLength = getEnvInt("RAG_ASSEMBLER_MAX_CONTEXT_LENGTH", c.Assembler.MaxContextLength)

	if v := os.Getenv("RAG_WATCH_ENABLED"); v != "" {
		c.Watch.Enabled = v == "1" || v == "true"
	}
}

// Validate checks invariants that would otherwise surface as confusing
// runtime errors deep in an adapter.
func (c *Config) Validate() error {
	if c.Embedding.DelayMs < 0 {
		return fmt.Errorf("embedding.delayMs must be non-negative, got %d", c.Embedding.DelayMs)
	}
	if c.Embedding.MaxRetries < 0 {
		return fmt.Errorf("embedding.maxRetries must be non-negative, got %d", c.Embedding.MaxRetries)
	}
	if c.Chunker.ChunkSize <= 0 {
		return fmt.Errorf("chunker.chunkSize must be positive, got %d", c.Chunker.ChunkSize)
	}
	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.ChunkSize {
		return fmt.Errorf("chunker.overlap must be in [0, chunkSize), got %d", c.Chunker.Overlap)
	}
	if c.Assembler.MaxContextLength <= 0 {
		return fmt.Errorf("assembler.maxContextLength must be positive, got %d", c.Assembler.MaxContextLength)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
