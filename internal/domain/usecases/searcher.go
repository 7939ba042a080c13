package usecases

import (
	"context"
	"time"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/ports"
)

// SearchRequest is the input to Searcher.Search.
type SearchRequest struct {
	Query       string
	Scope       entities.Scope
	Limit       int
	WorkspaceID string
}

// Searcher orchestrates: embed query -> vector top-N -> hydrate snippets
// from IndexStore -> assemble context pack under budget.
type Searcher struct {
	embedder    ports.EmbeddingClient
	vectorStore ports.VectorStore
	store       ports.IndexStore
	assembler   *ContextAssembler
	maxContext  int
}

// NewSearcher creates a Searcher with injected dependencies.
func NewSearcher(
	embedder ports.EmbeddingClient,
	vectorStore ports.VectorStore,
	store ports.IndexStore,
	assembler *ContextAssembler,
	maxContext int,
) *Searcher {
	if maxContext <= 0 {
		maxContext = defaultMaxContextLength
	}
	return &Searcher{
		embedder:    embedder,
		vectorStore: vectorStore,
		store:       store,
		assembler:   assembler,
		maxContext:  maxContext,
	}
}

// Search embeds the query, runs a scoped vector search, hydrates the
// matching chunks, and assembles a bounded context pack. A query that
// cannot be embedded (no API key, or permanent failure) returns an empty
// pack rather than an error.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) (entities.ContextPack, error) {
	start := time.Now()

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	scope := req.Scope
	if scope == "" {
		scope = entities.ScopeBoth
	}

	qv, err := s.embedder.Embed(ctx, req.Query)
	if err != nil || qv == nil {
		return entities.ContextPack{ResponseTime: time.Since(start)}, nil
	}

	topRaw, err := s.vectorStore.Query(ctx, qv, limit, scope)
	if err != nil {
		return entities.ContextPack{}, err
	}
	if len(topRaw) == 0 {
		return entities.ContextPack{ResponseTime: time.Since(start)}, nil
	}

	chunkIDs := make([]string, len(topRaw))
	scores := make(map[string]float64, len(topRaw))
	for i, m := range topRaw {
		chunkIDs[i] = m.ChunkID
		scores[m.ChunkID] = m.Score
	}

	hydrated, err := s.store.HydrateChunks(ctx, chunkIDs, req.Query, scores)
	if err != nil {
		return entities.ContextPack{}, err
	}

	pack := s.assembler.Assemble(hydrated, s.maxContext)
	pack.ResponseTime = time.Since(start)
	return pack, nil
}
