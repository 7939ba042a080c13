package extractor

import (
	"os"
	"strings"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

// extractText reads a .txt or .md file as UTF-8, trimming only surrounding
// whitespace. No metadata beyond word count and language is derivable from
// plain text.
func extractText(path string) (string, entities.DocumentMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", entities.DocumentMetadata{}, err
	}

	text := strings.TrimSpace(string(data))
	metadata := entities.DocumentMetadata{
		WordCount: wordCount(text),
		Language:  detectLanguage(text),
	}
	return text, metadata, nil
}
