// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port
// interfaces. They contain no framework code, no external dependencies -
// just pure business logic.
package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/ports"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/logging"
)

// Indexer orchestrates: extract -> chunk -> persist chunks -> embed chunks
// -> insert vectors. Idempotent per document.
type Indexer struct {
	extractor   ports.ContentExtractor
	chunker     ports.Chunker
	store       ports.IndexStore
	embedder    ports.EmbeddingClient
	vectorStore ports.VectorStore

	chunkSize int
	overlap   int
}

// NewIndexer creates an Indexer with injected dependencies.
// Dependency Injection: adapters are passed in, not created here.
func NewIndexer(
	extractor ports.ContentExtractor,
	chunker ports.Chunker,
	store ports.IndexStore,
	embedder ports.EmbeddingClient,
	vectorStore ports.VectorStore,
	chunkSize, overlap int,
) *Indexer {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 {
		overlap = 100
	}
	return &Indexer{
		extractor:   extractor,
		chunker:     chunker,
		store:       store,
		embedder:    embedder,
		vectorStore: vectorStore,
		chunkSize:   chunkSize,
		overlap:     overlap,
	}
}

// Index processes the document at path: extracts its text, chunks it,
// persists the catalog rows, embeds each chunk, and adds vectors. Calling
// Index twice with an unchanged file is a no-op that returns Skipped=true.
func (idx *Indexer) Index(ctx context.Context, path string, isPolicyManual bool, workspaceID string) (entities.IndexResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return entities.IndexResult{}, fmt.Errorf("%w: resolving path: %v", entities.ErrStorageError, err)
	}
	docID := computeDocID(absPath)

	checksum, err := checksumFile(absPath)
	if err != nil {
		return entities.IndexResult{}, fmt.Errorf("%w: checksumming file: %v", entities.ErrStorageError, err)
	}

	existing, err := idx.store.GetDocumentByPath(ctx, absPath)
	if err != nil {
		return entities.IndexResult{}, err
	}
	if existing != nil {
		if existing.Checksum == checksum {
			chunks, err := idx.store.GetChunksByDocID(ctx, existing.ID)
			if err != nil {
				return entities.IndexResult{}, err
			}
			return entities.IndexResult{
				DocID:         existing.ID,
				ChunksEmitted: len(chunks),
				Skipped:       true,
			}, nil
		}

		if err := idx.store.DeleteDocument(ctx, existing.ID); err != nil {
			return entities.IndexResult{}, err
		}
		if err := idx.vectorStore.DeleteByDocID(ctx, existing.ID); err != nil {
			return entities.IndexResult{}, err
		}
	}

	text, metadata, err := idx.extractor.Extract(ctx, absPath)
	if err != nil {
		return entities.IndexResult{}, err
	}

	now := time.Now()
	doc := entities.Document{
		ID:             docID,
		Filename:       filepath.Base(absPath),
		Filepath:       absPath,
		Filetype:       extOf(absPath),
		Filesize:       len(text),
		UploadedAt:     now,
		LastIndexed:    now,
		Checksum:       checksum,
		Metadata:       metadata,
		IsPolicyManual: isPolicyManual,
		WorkspaceID:    workspaceID,
	}
	if err := idx.store.InsertDocument(ctx, doc); err != nil {
		return entities.IndexResult{}, err
	}

	chunks := idx.chunker.Chunk(text, docID, idx.chunkSize, idx.overlap)
	if err := idx.store.InsertChunks(ctx, chunks); err != nil {
		return entities.IndexResult{}, err
	}

	var entries []ports.VectorEntry
	embedded := 0
	for _, chunk := range chunks {
		v, err := idx.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			logging.Errorf("embedding chunk %s: %v", chunk.ID, err)
			continue
		}
		if v == nil {
			continue
		}
		entries = append(entries, ports.VectorEntry{
			ChunkID: chunk.ID,
			Vector:  v,
			Metadata: entities.VectorMetadata{
				DocID:          docID,
				IsPolicyManual: isPolicyManual,
				Filename:       doc.Filename,
				Filetype:       doc.Filetype,
				ChunkIndex:     chunk.ChunkIndex,
			},
		})
		embedded++
	}

	if len(entries) > 0 {
		if err := idx.vectorStore.Add(ctx, entries); err != nil {
			return entities.IndexResult{}, err
		}
	}

	return entities.IndexResult{
		DocID:          docID,
		ChunksEmitted:  len(chunks),
		ChunksEmbedded: embedded,
	}, nil
}

// Delete removes a document and its chunks/vectors.
func (idx *Indexer) Delete(ctx context.Context, docID string) error {
	if err := idx.vectorStore.DeleteByDocID(ctx, docID); err != nil {
		return err
	}
	return idx.store.DeleteDocument(ctx, docID)
}

// LookupByPath resolves a filesystem path to its catalog document, if any.
// Used by a file watcher to translate a deletion event's bare path into the
// docID Delete requires.
func (idx *Indexer) LookupByPath(ctx context.Context, path string) (*entities.Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving path: %v", entities.ErrStorageError, err)
	}
	return idx.store.GetDocumentByPath(ctx, absPath)
}

// computeDocID derives a document's stable identity from its absolute path.
func computeDocID(absPath string) string {
	hash := sha256.Sum256([]byte(absPath))
	return hex.EncodeToString(hash[:8])
}

// checksumFile hashes the file's full byte contents.
func checksumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func extOf(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	return ext
}
