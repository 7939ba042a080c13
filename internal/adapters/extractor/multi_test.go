package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

func TestMultiExtractor_ExtractsPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("hello world, this is plain text."), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	e := New()
	text, meta, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world, this is plain text." {
		t.Errorf("unexpected text: %q", text)
	}
	if meta.WordCount != 6 {
		t.Errorf("expected word count 6, got %d", meta.WordCount)
	}
	if meta.Language != "en" {
		t.Errorf("expected language en, got %q", meta.Language)
	}
}

func TestMultiExtractor_ExtractsMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readme.md")
	if err := os.WriteFile(path, []byte("# Title\n\nbody text"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	e := New()
	text, _, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "# Title\n\nbody text" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestMultiExtractor_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	if err := os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	e := New()
	_, _, err := e.Extract(context.Background(), path)
	if !errors.Is(err, entities.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestMultiExtractor_MissingFileFails(t *testing.T) {
	e := New()
	_, _, err := e.Extract(context.Background(), "/nonexistent/path.txt")
	if !errors.Is(err, entities.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestMultiExtractor_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New()
	_, _, err := e.Extract(ctx, "whatever.txt")
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
