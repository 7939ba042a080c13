package chunker

import (
	"regexp"
	"strings"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

var sentenceBoundaryRe = regexp.MustCompile(`[.!?]+`)

// chunkBySentence is the last-resort strategy: split on sentence-ending
// punctuation and greedily pack sentences into chunks. When a chunk is
// emitted, the next chunk is seeded with the trailing overlap characters of
// the chunk just emitted, so adjacent chunks share context.
func chunkBySentence(text, docID string, chunkSize, overlap int) []entities.Chunk {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []entities.Chunk
	index := 0
	var buf strings.Builder

	flush := func(seed string) {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, newChunk(docID, "sent", index, buf.String()))
		index++
		buf.Reset()
		if seed != "" {
			buf.WriteString(seed)
		}
	}

	for _, s := range sentences {
		if buf.Len() > 0 && buf.Len()+1+len(s) > chunkSize {
			seed := trailingOverlap(buf.String(), overlap)
			flush(seed)
		}
		if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(s)
	}
	flush("")

	return chunks
}

// splitSentences splits text on runs of '.', '!' or '?', keeping the
// terminator attached to the preceding sentence.
func splitSentences(text string) []string {
	locs := sentenceBoundaryRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var sentences []string
	start := 0
	for _, loc := range locs {
		end := loc[1]
		sentence := strings.TrimSpace(text[start:end])
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = end
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// trailingOverlap returns the last n characters of s, breaking on a rune
// boundary.
func trailingOverlap(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
