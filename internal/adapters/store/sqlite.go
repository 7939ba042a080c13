// Package store provides the relational document/chunk catalog.
// Clean Architecture: Adapter implementing ports.IndexStore.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

// SQLiteStore implements ports.IndexStore with a SQLite-backed catalog of
// documents and chunks.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// New creates a SQLite-backed IndexStore, bootstrapping the schema and
// the containing directory if needed.
func New(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/index.db"
	}
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		filepath TEXT NOT NULL UNIQUE,
		filetype TEXT NOT NULL,
		filesize INTEGER NOT NULL,
		uploaded_at DATETIME NOT NULL,
		last_indexed DATETIME NOT NULL,
		checksum TEXT NOT NULL,
		metadata TEXT NOT NULL,
		is_policy_manual INTEGER NOT NULL DEFAULT 0,
		workspace_id TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		doc_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		tokens INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_workspace ON documents(workspace_id);
	CREATE INDEX IF NOT EXISTS idx_documents_scope ON documents(is_policy_manual);
	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeMetadata(m entities.DocumentMetadata) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeMetadata(raw string) (entities.DocumentMetadata, error) {
	var m entities.DocumentMetadata
	if raw == "" {
		return m, nil
	}
	err := json.Unmarshal([]byte(raw), &m)
	return m, err
}

// InsertDocument upserts a document row by path.
func (s *SQLiteStore) InsertDocument(ctx context.Context, doc entities.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metadataJSON, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return fmt.Errorf("%w: encoding metadata: %v", entities.ErrStorageError, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, filepath, filetype, filesize, uploaded_at, last_indexed, checksum, metadata, is_policy_manual, workspace_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filepath) DO UPDATE SET
			filename = excluded.filename,
			filetype = excluded.filetype,
			filesize = excluded.filesize,
			last_indexed = excluded.last_indexed,
			checksum = excluded.checksum,
			metadata = excluded.metadata,
			is_policy_manual = excluded.is_policy_manual,
			workspace_id = excluded.workspace_id
	`,
		doc.ID, doc.Filename, doc.Filepath, doc.Filetype, doc.Filesize,
		doc.UploadedAt, doc.LastIndexed, doc.Checksum, metadataJSON,
		boolToInt(doc.IsPolicyManual), doc.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("%w: inserting document: %v", entities.ErrStorageError, err)
	}
	return nil
}

// InsertChunks inserts a batch of chunks in one transaction.
func (s *SQLiteStore) InsertChunks(ctx context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: starting transaction: %v", entities.ErrStorageError, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, doc_id, text, chunk_index, tokens)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %v", entities.ErrStorageError, err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocID, c.Text, c.ChunkIndex, c.Tokens); err != nil {
			return fmt.Errorf("%w: inserting chunk: %v", entities.ErrStorageError, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", entities.ErrStorageError, err)
	}
	return nil
}

const documentColumns = "id, filename, filepath, filetype, filesize, uploaded_at, last_indexed, checksum, metadata, is_policy_manual, workspace_id"

func scanDocument(row interface {
	Scan(dest ...any) error
}) (*entities.Document, error) {
	var doc entities.Document
	var metadataJSON string
	var isPolicyManual int

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.Filepath, &doc.Filetype, &doc.Filesize,
		&doc.UploadedAt, &doc.LastIndexed, &doc.Checksum, &metadataJSON,
		&isPolicyManual, &doc.WorkspaceID,
	)
	if err != nil {
		return nil, err
	}

	doc.IsPolicyManual = isPolicyManual != 0
	doc.Metadata, err = decodeMetadata(metadataJSON)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetDocumentByPath returns nil, nil when no document is indexed at path.
func (s *SQLiteStore) GetDocumentByPath(ctx context.Context, path string) (*entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE filepath = ?", path)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	return doc, nil
}

// GetDocumentByID returns nil, nil when docID is not indexed.
func (s *SQLiteStore) GetDocumentByID(ctx context.Context, docID string) (*entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", docID)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	return doc, nil
}

// GetDocumentsByScope lists every document matching the policy-manual flag.
func (s *SQLiteStore) GetDocumentsByScope(ctx context.Context, isPolicyManual bool) ([]entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE is_policy_manual = ?", boolToInt(isPolicyManual))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	defer rows.Close()

	var docs []entities.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// GetChunksByDocID returns chunks ordered by chunk_index.
func (s *SQLiteStore) GetChunksByDocID(ctx context.Context, docID string) ([]entities.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, doc_id, text, chunk_index, tokens FROM chunks
		WHERE doc_id = ? ORDER BY chunk_index ASC
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	defer rows.Close()

	var chunks []entities.Chunk
	for rows.Next() {
		var c entities.Chunk
		if err := rows.Scan(&c.ID, &c.DocID, &c.Text, &c.ChunkIndex, &c.Tokens); err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

// HydrateChunks joins chunk IDs against their parent documents and attaches
// a **query**-highlighted snippet plus the caller-supplied similarity score.
func (s *SQLiteStore) HydrateChunks(ctx context.Context, chunkIDs []string, query string, scores map[string]float64) ([]entities.SearchResult, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := make([]string, len(chunkIDs))
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	q := fmt.Sprintf(`
		SELECT c.id, c.doc_id, c.text, c.chunk_index, d.filename
		FROM chunks c
		JOIN documents d ON d.id = c.doc_id
		WHERE c.id IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	defer rows.Close()

	byID := make(map[string]entities.SearchResult, len(chunkIDs))
	for rows.Next() {
		var r entities.SearchResult
		var text string
		if err := rows.Scan(&r.ChunkID, &r.DocID, &text, &r.ChunkIndex, &r.Filename); err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
		}
		r.Snippet = highlight(text, query)
		r.Score = scores[r.ChunkID]
		byID[r.ChunkID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}

	results := make([]entities.SearchResult, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		if r, ok := byID[id]; ok {
			results = append(results, r)
		}
	}
	return results, nil
}

// highlight wraps every case-insensitive occurrence of query in **...**.
func highlight(text, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return text
	}
	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)

	var sb strings.Builder
	rest := text
	restLower := lowerText
	for {
		idx := strings.Index(restLower, lowerQuery)
		if idx == -1 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:idx])
		sb.WriteString("**")
		sb.WriteString(rest[idx : idx+len(query)])
		sb.WriteString("**")
		rest = rest[idx+len(query):]
		restLower = restLower[idx+len(query):]
	}
	return sb.String()
}

// DeleteDocument removes a document and its chunks (FK cascade).
func (s *SQLiteStore) DeleteDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", docID)
	if err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	return nil
}

// ClearAll wipes every document and chunk.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	return nil
}

// Stats aggregates per-filetype counts and the overall chunk/token profile.
func (s *SQLiteStore) Stats(ctx context.Context) (entities.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := entities.Stats{ByFiletype: make(map[string]entities.FiletypeStats)}

	rows, err := s.db.QueryContext(ctx, "SELECT filetype, filesize FROM documents")
	if err != nil {
		return stats, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var filetype string
		var filesize int
		if err := rows.Scan(&filetype, &filesize); err != nil {
			return stats, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
		}
		fs := stats.ByFiletype[filetype]
		fs.Count++
		fs.TotalSizeChars += filesize
		stats.ByFiletype[filetype] = fs
		stats.TotalDocuments++
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}

	var totalChunks, totalTokens int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(tokens), 0) FROM chunks").Scan(&totalChunks, &totalTokens)
	if err != nil {
		return stats, fmt.Errorf("%w: %v", entities.ErrStorageError, err)
	}
	stats.TotalChunks = totalChunks
	if totalChunks > 0 {
		stats.AverageTokensPerChunk = int(math.Round(float64(totalTokens) / float64(totalChunks)))
	}

	return stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
