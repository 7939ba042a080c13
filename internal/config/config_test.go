package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.DelayMs != 100 {
		t.Errorf("expected default delayMs 100, got %d", cfg.Embedding.DelayMs)
	}
	if cfg.Chunker.ChunkSize != 1000 {
		t.Errorf("expected default chunkSize 1000, got %d", cfg.Chunker.ChunkSize)
	}
	if cfg.Assembler.MaxContextLength != 4000 {
		t.Errorf("expected default maxContextLength 4000, got %d", cfg.Assembler.MaxContextLength)
	}
}

func TestLoad_YAMLFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "embedding:\n  model: custom-model\n  delayMs: 250\nchunker:\n  chunkSize: 500\n  overlap: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.Model != "custom-model" {
		t.Errorf("expected model override, got %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.DelayMs != 250 {
		t.Errorf("expected delayMs override, got %d", cfg.Embedding.DelayMs)
	}
	if cfg.Chunker.ChunkSize != 500 {
		t.Errorf("expected chunkSize override, got %d", cfg.Chunker.ChunkSize)
	}
}

func TestLoad_EnvOverridesTakePrecedence(t *testing.T) {
	t.Setenv("RAG_EMBEDDING_MODEL", "env-model")
	t.Setenv("RAG_CHUNK_SIZE", "750")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.Model != "env-model" {
		t.Errorf("expected env override for model, got %s", cfg.Embedding.Model)
	}
	if cfg.Chunker.ChunkSize != 750 {
		t.Errorf("expected env override for chunk size, got %d", cfg.Chunker.ChunkSize)
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected missing config file to be tolerated, got %v", err)
	}
}

func TestValidate_RejectsOverlapEqualToChunkSize(t *testing.T) {
	cfg := Default()
	cfg.Chunker.Overlap = cfg.Chunker.ChunkSize
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when overlap >= chunkSize")
	}
}

func TestValidate_RejectsNonPositiveChunkSize(t *testing.T) {
	cfg := Default()
	cfg.Chunker.ChunkSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for zero chunkSize")
	}
}
