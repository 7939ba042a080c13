package usecases

import (
	"context"
	"testing"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/ports"
)

// stubVectorStore implements ports.VectorStore with canned query results.
type stubVectorStore struct {
	matches []ports.VectorMatch
}

func (s *stubVectorStore) Add(ctx context.Context, entries []ports.VectorEntry) error { return nil }
func (s *stubVectorStore) Query(ctx context.Context, vector []float32, n int, scope entities.Scope) ([]ports.VectorMatch, error) {
	return s.matches, nil
}
func (s *stubVectorStore) DeleteByDocID(ctx context.Context, docID string) error { return nil }
func (s *stubVectorStore) Clear(ctx context.Context) error                      { return nil }

// stubIndexStoreForHydrate only implements HydrateChunks meaningfully.
type stubIndexStoreForHydrate struct {
	results []entities.SearchResult
}

func (s *stubIndexStoreForHydrate) InsertDocument(ctx context.Context, doc entities.Document) error {
	return nil
}
func (s *stubIndexStoreForHydrate) InsertChunks(ctx context.Context, chunks []entities.Chunk) error {
	return nil
}
func (s *stubIndexStoreForHydrate) GetDocumentByPath(ctx context.Context, path string) (*entities.Document, error) {
	return nil, nil
}
func (s *stubIndexStoreForHydrate) GetDocumentByID(ctx context.Context, docID string) (*entities.Document, error) {
	return nil, nil
}
func (s *stubIndexStoreForHydrate) GetDocumentsByScope(ctx context.Context, isPolicyManual bool) ([]entities.Document, error) {
	return nil, nil
}
func (s *stubIndexStoreForHydrate) GetChunksByDocID(ctx context.Context, docID string) ([]entities.Chunk, error) {
	return nil, nil
}
func (s *stubIndexStoreForHydrate) HydrateChunks(ctx context.Context, chunkIDs []string, query string, scores map[string]float64) ([]entities.SearchResult, error) {
	return s.results, nil
}
func (s *stubIndexStoreForHydrate) DeleteDocument(ctx context.Context, docID string) error {
	return nil
}
func (s *stubIndexStoreForHydrate) ClearAll(ctx context.Context) error { return nil }
func (s *stubIndexStoreForHydrate) Stats(ctx context.Context) (entities.Stats, error) {
	return entities.Stats{}, nil
}

func TestSearcher_Search_ReturnsAssembledPack(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	vectors := &stubVectorStore{matches: []ports.VectorMatch{
		{ChunkID: "c1", Score: 0.9, Metadata: entities.VectorMetadata{DocID: "d1"}},
	}}
	store := &stubIndexStoreForHydrate{results: []entities.SearchResult{
		{ChunkID: "c1", DocID: "d1", Filename: "policy.pdf", Snippet: "the relevant text", Score: 0.9, ChunkIndex: 0},
	}}

	searcher := NewSearcher(embedder, vectors, store, NewContextAssembler(), 4000)
	pack, err := searcher.Search(ctx, SearchRequest{Query: "relevant", Limit: 5, Scope: entities.ScopeBoth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pack.TotalResults != 1 {
		t.Errorf("expected 1 result, got %d", pack.TotalResults)
	}
	if pack.AnswerContext != "the relevant text" {
		t.Errorf("unexpected context: %q", pack.AnswerContext)
	}
	if len(pack.Attributions) != 1 || pack.Attributions[0].Score != 0.9 {
		t.Errorf("unexpected attributions: %+v", pack.Attributions)
	}
}

func TestSearcher_Search_UnembeddableQueryReturnsEmptyPack(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{skipAll: true}
	vectors := &stubVectorStore{}
	store := &stubIndexStoreForHydrate{}

	searcher := NewSearcher(embedder, vectors, store, NewContextAssembler(), 4000)
	pack, err := searcher.Search(ctx, SearchRequest{Query: "anything"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pack.AnswerContext != "" || pack.TotalResults != 0 || len(pack.Attributions) != 0 {
		t.Errorf("expected empty pack, got %+v", pack)
	}
}

func TestSearcher_Search_EmbeddingErrorReturnsEmptyPackNotError(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{err: entities.ErrEmbeddingFailed}
	vectors := &stubVectorStore{}
	store := &stubIndexStoreForHydrate{}

	searcher := NewSearcher(embedder, vectors, store, NewContextAssembler(), 4000)
	pack, err := searcher.Search(ctx, SearchRequest{Query: "anything"})
	if err != nil {
		t.Fatalf("expected a failed query embedding to yield an empty pack, not an error, got: %v", err)
	}
	if pack.TotalResults != 0 {
		t.Errorf("expected empty pack, got %+v", pack)
	}
}

func TestSearcher_Search_NoVectorMatchesReturnsEmptyPack(t *testing.T) {
	ctx := context.Background()
	embedder := &stubEmbedder{vector: []float32{1, 0}}
	vectors := &stubVectorStore{matches: nil}
	store := &stubIndexStoreForHydrate{}

	searcher := NewSearcher(embedder, vectors, store, NewContextAssembler(), 4000)
	pack, err := searcher.Search(ctx, SearchRequest{Query: "anything"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pack.TotalResults != 0 {
		t.Errorf("expected no results, got %d", pack.TotalResults)
	}
}
