// Package chunker splits document text into ordered, bounded-size chunks
// using a heading -> paragraph -> sentence fallback, the way a document
// needs to be broken up before it can be embedded.
package chunker

import (
	"fmt"
	"math"
	"strings"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 100
)

// HierarchicalChunker implements ports.Chunker with the three-stage
// heading -> paragraph -> sentence fallback described by the spec.
type HierarchicalChunker struct{}

// New creates a HierarchicalChunker.
func New() *HierarchicalChunker {
	return &HierarchicalChunker{}
}

// Chunk splits text into an ordered sequence of chunks for docID.
func (c *HierarchicalChunker) Chunk(text, docID string, chunkSize, overlap int) []entities.Chunk {
	return Chunk(text, docID, chunkSize, overlap)
}

// Chunk is the package-level entry point so callers that don't need the
// ports.Chunker wrapper can use it directly.
func Chunk(text, docID string, chunkSize, overlap int) []entities.Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if chunks := chunkByHeading(text, docID, chunkSize); len(chunks) > 0 {
		return chunks
	}
	// Paragraph packing only applies when the text has blank-line breaks;
	// a single block of text goes to sentence packing with overlap.
	if len(splitParagraphs(text)) > 1 {
		if chunks := chunkByParagraph(text, docID, chunkSize); len(chunks) > 0 {
			return chunks
		}
	}
	return chunkBySentence(text, docID, chunkSize, overlap)
}

// tokenEstimate mirrors the spec's len/4 token estimator.
func tokenEstimate(text string) int {
	return int(math.Ceil(float64(len(text)) / 4))
}

func newChunk(docID, strategy string, index int, text string) entities.Chunk {
	text = strings.TrimSpace(text)
	return entities.Chunk{
		ID:         fmt.Sprintf("%s_%s_chunk_%d", docID, strategy, index),
		DocID:      docID,
		Text:       text,
		ChunkIndex: index,
		Tokens:     tokenEstimate(text),
	}
}
