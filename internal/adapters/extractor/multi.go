// Package extractor converts source documents (PDF, DOCX, TXT, Markdown)
// into plain text plus best-effort metadata, dispatching by file extension.
package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

// MultiExtractor implements ports.ContentExtractor by dispatching on the
// lowercase file extension.
type MultiExtractor struct{}

// New creates a MultiExtractor.
func New() *MultiExtractor {
	return &MultiExtractor{}
}

// Extract reads and parses the document at path. Extraction never panics;
// malformed input surfaces as entities.ErrExtractionFailed.
func (e *MultiExtractor) Extract(ctx context.Context, path string) (string, entities.DocumentMetadata, error) {
	if err := ctx.Err(); err != nil {
		return "", entities.DocumentMetadata{}, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	var (
		text string
		meta entities.DocumentMetadata
		err  error
	)

	switch ext {
	case "pdf":
		text, meta, err = extractPDF(path)
	case "docx":
		text, meta, err = extractDocx(path)
	case "txt", "md", "markdown":
		text, meta, err = extractText(path)
	default:
		return "", entities.DocumentMetadata{}, fmt.Errorf("%w: %s", entities.ErrUnsupportedFormat, ext)
	}

	if err != nil {
		return "", entities.DocumentMetadata{}, fmt.Errorf("%w: %s: %v", entities.ErrExtractionFailed, path, err)
	}
	return text, meta, nil
}

// SupportedExtensions lists the extensions this extractor dispatches on.
func (e *MultiExtractor) SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".txt", ".md", ".markdown"}
}
