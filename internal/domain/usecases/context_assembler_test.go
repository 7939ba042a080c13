package usecases

import (
	"strings"
	"testing"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

func TestContextAssembler_SortsByScoreDescending(t *testing.T) {
	a := NewContextAssembler()
	results := []entities.SearchResult{
		{ChunkID: "c1", DocID: "d1", Snippet: "low score", Score: 0.2, ChunkIndex: 0},
		{ChunkID: "c2", DocID: "d2", Snippet: "high score", Score: 0.9, ChunkIndex: 0},
	}

	pack := a.Assemble(results, 4000)
	if !strings.HasPrefix(pack.AnswerContext, "high score") {
		t.Errorf("expected highest-scoring chunk first, got %q", pack.AnswerContext)
	}
}

func TestContextAssembler_DeduplicatesByDocID(t *testing.T) {
	a := NewContextAssembler()
	results := []entities.SearchResult{
		{ChunkID: "c1", DocID: "d1", Snippet: "better chunk", Score: 0.9, ChunkIndex: 1},
		{ChunkID: "c2", DocID: "d1", Snippet: "worse chunk", Score: 0.5, ChunkIndex: 0},
	}

	pack := a.Assemble(results, 4000)
	if pack.TotalResults != 1 {
		t.Errorf("expected 1 deduplicated result, got %d", pack.TotalResults)
	}
	if len(pack.Attributions) != 1 || pack.Attributions[0].ChunkID != "c1" {
		t.Errorf("expected higher-scoring chunk to survive dedup, got %+v", pack.Attributions)
	}
}

func TestContextAssembler_TruncatesWhenBudgetExceeded(t *testing.T) {
	a := NewContextAssembler()

	results := make([]entities.SearchResult, 0, 20)
	for i := 0; i < 20; i++ {
		results = append(results, entities.SearchResult{
			ChunkID:    "c" + string(rune('a'+i)),
			DocID:      "d" + string(rune('a'+i)),
			Snippet:    strings.Repeat("x", 500),
			Score:      1.0 - float64(i)*0.01,
			ChunkIndex: 0,
		})
	}

	pack := a.Assemble(results, 4000)
	if len(pack.AnswerContext) > 4000 {
		t.Errorf("expected context to stay within budget, got %d chars", len(pack.AnswerContext))
	}
	if pack.TotalResults != 20 {
		t.Errorf("expected totalResults to count all deduplicated input, got %d", pack.TotalResults)
	}
	if len(pack.Attributions) < 8 {
		t.Errorf("expected at least 8 attributions (7 full chunks plus a truncated one), got %d", len(pack.Attributions))
	}
}

func TestContextAssembler_NoTruncationWhenRemainderTooSmall(t *testing.T) {
	a := NewContextAssembler()

	results := []entities.SearchResult{
		{ChunkID: "c1", DocID: "d1", Snippet: strings.Repeat("a", 3950), Score: 1.0, ChunkIndex: 0},
		{ChunkID: "c2", DocID: "d2", Snippet: strings.Repeat("b", 200), Score: 0.9, ChunkIndex: 0},
	}

	pack := a.Assemble(results, 4000)
	if len(pack.Attributions) != 1 {
		t.Fatalf("expected no truncated chunk appended when remainder < 100 chars, got %d attributions", len(pack.Attributions))
	}
}

func TestContextAssembler_EmptyInputYieldsEmptyPack(t *testing.T) {
	a := NewContextAssembler()
	pack := a.Assemble(nil, 4000)
	if pack.AnswerContext != "" || pack.TotalResults != 0 || len(pack.Attributions) != 0 {
		t.Errorf("expected empty pack, got %+v", pack)
	}
}
