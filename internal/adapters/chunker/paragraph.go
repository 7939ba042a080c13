package chunker

import (
	"regexp"
	"strings"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

var blankLineRe = regexp.MustCompile(`\n\s*\n`)

// chunkByParagraph packs paragraphs (split on blank lines) greedily into
// chunks bounded by chunkSize. A paragraph that alone exceeds chunkSize is
// hard-sliced into chunkSize-sized pieces before packing resumes.
func chunkByParagraph(text, docID string, chunkSize int) []entities.Chunk {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []entities.Chunk
	index := 0
	var buf strings.Builder

	flush := func() {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, newChunk(docID, "para", index, buf.String()))
		index++
		buf.Reset()
	}

	for _, p := range paragraphs {
		if len(p) > chunkSize {
			flush()
			for start := 0; start < len(p); start += chunkSize {
				end := start + chunkSize
				if end > len(p) {
					end = len(p)
				}
				chunks = append(chunks, newChunk(docID, "para", index, p[start:end]))
				index++
			}
			continue
		}

		if buf.Len() > 0 && buf.Len()+2+len(p) > chunkSize {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(p)
	}
	flush()

	return chunks
}

func splitParagraphs(text string) []string {
	raw := blankLineRe.Split(text, -1)
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}
