package entities

import (
	"testing"
	"time"
)

func TestDocument_Creation(t *testing.T) {
	now := time.Now()
	doc := Document{
		ID:             "doc-123",
		Filename:       "test.pdf",
		Filepath:       "/tmp/test.pdf",
		Filetype:       "pdf",
		Filesize:       1024,
		UploadedAt:     now,
		LastIndexed:    now,
		Checksum:       "abc123",
		IsPolicyManual: true,
	}

	if doc.ID != "doc-123" {
		t.Errorf("expected ID doc-123, got %s", doc.ID)
	}
	if doc.Filename != "test.pdf" {
		t.Errorf("expected filename test.pdf, got %s", doc.Filename)
	}
	if !doc.IsPolicyManual {
		t.Error("expected IsPolicyManual true")
	}
}

func TestChunk_TokenEstimate(t *testing.T) {
	chunk := Chunk{
		ID:         "chunk-1",
		DocID:      "doc-123",
		Text:       "some text",
		ChunkIndex: 0,
		Tokens:     3,
	}

	if chunk.Tokens != 3 {
		t.Errorf("expected 3 tokens, got %d", chunk.Tokens)
	}
	if chunk.DocID != "doc-123" {
		t.Errorf("expected doc id doc-123, got %s", chunk.DocID)
	}
}

func TestSearchResult_Score(t *testing.T) {
	result := SearchResult{
		ChunkID:  "c1",
		DocID:    "doc-123",
		Filename: "doc.pdf",
		Snippet:  "test",
		Score:    0.95,
	}

	if result.Score < 0.9 {
		t.Error("expected high score")
	}
}

func TestAttribution_RangeHint(t *testing.T) {
	attr := Attribution{
		DocID:     "doc-123",
		ChunkID:   "c1",
		Filename:  "doc.pdf",
		RangeHint: "Chunk 3 (truncated)",
		Score:     0.8,
	}

	if attr.RangeHint != "Chunk 3 (truncated)" {
		t.Errorf("unexpected range hint: %s", attr.RangeHint)
	}
}

func TestContextPack_Fields(t *testing.T) {
	pack := ContextPack{
		AnswerContext: "some context",
		Attributions:  []Attribution{{ChunkID: "c1"}},
		TotalResults:  1,
		ResponseTime:  50 * time.Millisecond,
	}

	if pack.TotalResults != len(pack.Attributions) {
		t.Errorf("expected TotalResults to match attribution count here, got %d vs %d", pack.TotalResults, len(pack.Attributions))
	}
}

func TestStats_AggregatesPerFiletype(t *testing.T) {
	stats := Stats{
		ByFiletype: map[string]FiletypeStats{
			"pdf": {Count: 2, TotalSizeChars: 2048},
		},
		TotalDocuments: 2,
		TotalChunks:    10,
	}

	if stats.ByFiletype["pdf"].Count != 2 {
		t.Errorf("expected 2 pdf documents, got %d", stats.ByFiletype["pdf"].Count)
	}
	if stats.TotalChunks != 10 {
		t.Errorf("expected 10 total chunks, got %d", stats.TotalChunks)
	}
}

func TestIndexResult_SkippedFlag(t *testing.T) {
	result := IndexResult{
		DocID:          "doc-123",
		ChunksEmitted:  5,
		ChunksEmbedded: 5,
		Skipped:        false,
	}

	if result.Skipped {
		t.Error("expected Skipped false on a fresh index")
	}
	if result.ChunksEmbedded != result.ChunksEmitted {
		t.Errorf("expected all chunks embedded, got %d of %d", result.ChunksEmbedded, result.ChunksEmitted)
	}
}

func TestScope_Constants(t *testing.T) {
	if ScopePolicyManual != "policy_manual" {
		t.Errorf("unexpected ScopePolicyManual value: %s", ScopePolicyManual)
	}
	if ScopeWorkspace != "workspace_docs" {
		t.Errorf("unexpected ScopeWorkspace value: %s", ScopeWorkspace)
	}
	if ScopeBoth != "both" {
		t.Errorf("unexpected ScopeBoth value: %s", ScopeBoth)
	}
}
