// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
// This follows Dependency Inversion Principle (DIP) strictly.
package ports

import (
	"context"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

// ContentExtractor converts a document URI into (text, metadata).
// Interface Segregation: Only extraction responsibility, nothing else.
type ContentExtractor interface {
	// Extract reads and parses the document at path, dispatching by
	// lowercase extension. Returns ErrUnsupportedFormat or
	// ErrExtractionFailed on failure; never panics.
	Extract(ctx context.Context, path string) (text string, metadata entities.DocumentMetadata, err error)
}

// Chunker splits text into ordered, non-empty chunks.
type Chunker interface {
	// Chunk splits text into an ordered sequence of chunks for docID.
	Chunk(text, docID string, chunkSize, overlap int) []entities.Chunk
}

// IndexStore is the durable catalog of documents and chunks.
// Dependency Inversion: Usecases depend on this abstraction, not a
// concrete database driver.
type IndexStore interface {
	InsertDocument(ctx context.Context, doc entities.Document) error
	InsertChunks(ctx context.Context, chunks []entities.Chunk) error
	GetDocumentByPath(ctx context.Context, filepath string) (*entities.Document, error)
	GetDocumentByID(ctx context.Context, docID string) (*entities.Document, error)
	GetDocumentsByScope(ctx context.Context, isPolicyManual bool) ([]entities.Document, error)
	GetChunksByDocID(ctx context.Context, docID string) ([]entities.Chunk, error)
	HydrateChunks(ctx context.Context, chunkIDs []string, query string, scores map[string]float64) ([]entities.SearchResult, error)
	DeleteDocument(ctx context.Context, docID string) error
	ClearAll(ctx context.Context) error
	Stats(ctx context.Context) (entities.Stats, error)
}

// EmbeddingClient generates a vector embedding for a single text.
// Single Responsibility: Only embedding RPC, rate limiting and retry,
// nothing else. Callers batch externally, one call per text.
type EmbeddingClient interface {
	// Embed returns (nil, nil) when embedding is disabled, and a nil
	// vector with an error when it permanently failed after retries;
	// callers treat either as "skip".
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore is an in-memory map chunkId -> (vector, metadata) supporting
// cosine similarity search with a scope filter.
type VectorStore interface {
	Add(ctx context.Context, entries []VectorEntry) error
	Query(ctx context.Context, vector []float32, n int, scope entities.Scope) ([]VectorMatch, error)
	DeleteByDocID(ctx context.Context, docID string) error
	Clear(ctx context.Context) error
}

// VectorEntry is one row added to the VectorStore.
type VectorEntry struct {
	ChunkID  string
	Vector   []float32
	Metadata entities.VectorMetadata
}

// VectorMatch is one row returned by VectorStore.Query.
type VectorMatch struct {
	ChunkID  string
	Score    float64
	Metadata entities.VectorMetadata
}

// FileWatcher monitors a directory for changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
