package usecases

import (
	"fmt"
	"sort"
	"strings"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

const defaultMaxContextLength = 4000

// minTruncationRemainder is the smallest remaining budget worth a partial,
// truncated append; below this a trailing chunk is dropped entirely.
const minTruncationRemainder = 100

// ContextAssembler turns hydrated search results into a bounded, attributed
// context pack: sort by score, deduplicate by document, then pack into a
// maxLen character budget with truncation on overflow.
type ContextAssembler struct{}

// NewContextAssembler creates a ContextAssembler.
func NewContextAssembler() *ContextAssembler {
	return &ContextAssembler{}
}

// Assemble builds a ContextPack from hydrated results. maxLen<=0 uses the
// default budget of 4000 characters.
func (a *ContextAssembler) Assemble(results []entities.SearchResult, maxLen int) entities.ContextPack {
	if maxLen <= 0 {
		maxLen = defaultMaxContextLength
	}

	ordered := make([]entities.SearchResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	deduped := dedupeByDocID(ordered)

	var buf strings.Builder
	attributions := make([]entities.Attribution, 0, len(deduped))

	for _, r := range deduped {
		addition := r.Snippet
		separator := ""
		if buf.Len() > 0 {
			separator = "\n\n"
		}

		if buf.Len()+len(separator)+len(addition) <= maxLen {
			buf.WriteString(separator)
			buf.WriteString(addition)
			attributions = append(attributions, newAttribution(r, false))
			continue
		}

		remaining := maxLen - buf.Len() - len(separator)
		if remaining >= minTruncationRemainder {
			truncated := addition
			if len(truncated) > remaining {
				truncated = truncated[:remaining-3]
			}
			buf.WriteString(separator)
			buf.WriteString(truncated)
			buf.WriteString("...")
			attributions = append(attributions, newAttribution(r, true))
		}
		break
	}

	return entities.ContextPack{
		AnswerContext: buf.String(),
		Attributions:  attributions,
		TotalResults:  len(deduped),
	}
}

// dedupeByDocID keeps only the highest-scoring result per document,
// assuming the input is already sorted by score descending.
func dedupeByDocID(sorted []entities.SearchResult) []entities.SearchResult {
	seen := make(map[string]bool, len(sorted))
	deduped := make([]entities.SearchResult, 0, len(sorted))
	for _, r := range sorted {
		if seen[r.DocID] {
			continue
		}
		seen[r.DocID] = true
		deduped = append(deduped, r)
	}
	return deduped
}

func newAttribution(r entities.SearchResult, truncated bool) entities.Attribution {
	rangeHint := fmt.Sprintf("Chunk %d", r.ChunkIndex+1)
	if truncated {
		rangeHint += " (truncated)"
	}
	return entities.Attribution{
		DocID:     r.DocID,
		ChunkID:   r.ChunkID,
		Filename:  r.Filename,
		RangeHint: rangeHint,
		Score:     r.Score,
	}
}
