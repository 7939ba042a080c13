// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/ports"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/usecases"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/logging"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Server is the HTTP server for the RAG index/search API and UI.
type Server struct {
	indexer   *usecases.Indexer
	searcher  *usecases.Searcher
	store     ports.IndexStore
	templates *template.Template
	addr      string
}

// NewServer creates a new HTTP server.
func NewServer(indexer *usecases.Indexer, searcher *usecases.Searcher, store ports.IndexStore, addr string) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		tmpl = template.New("index")
	}

	return &Server{
		indexer:   indexer,
		searcher:  searcher,
		store:     store,
		templates: tmpl,
		addr:      addr,
	}, nil
}

// Start runs the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	staticContent, _ := fs.Sub(staticFS, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/index", s.handleIndexDocument)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/search/stream", s.handleSearchStream)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/health", s.handleHealth)

	server := &http.Server{
		Addr:         s.addr,
		Handler:      corsMiddleware(loggingMiddleware(mux)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	logging.Infof("appealsnavigator-rag server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	return server.ListenAndServe()
}

// handleIndex renders the minimal search UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>appealsnavigator-rag</title>
    <link rel="stylesheet" href="/static/style.css">
</head>
<body>
    <div class="container">
        <header>
            <h1>appealsnavigator-rag</h1>
            <p class="subtitle">Local document index and search</p>
        </header>
        <main>
            <form id="search-form">
                <input type="text" id="query-input" name="query" placeholder="Search your documents..." autocomplete="off" required>
                <button type="submit">Search</button>
            </form>
            <div id="results"></div>
        </main>
    </div>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

type indexRequest struct {
	Path           string `json:"path"`
	IsPolicyManual bool   `json:"isPolicyManual"`
	WorkspaceID    string `json:"workspaceId"`
}

// handleIndexDocument indexes one document at a filesystem path.
func (s *Server) handleIndexDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	result, err := s.indexer.Index(r.Context(), req.Path, req.IsPolicyManual, req.WorkspaceID)
	if err != nil {
		writeIndexError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func writeIndexError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrUnsupportedFormat):
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
	case errors.Is(err, entities.ErrExtractionFailed):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseSearchRequest(r *http.Request) usecases.SearchRequest {
	q := r.URL.Query()
	req := usecases.SearchRequest{
		Query:       q.Get("q"),
		WorkspaceID: q.Get("workspaceId"),
		Scope:       entities.Scope(q.Get("scope")),
	}
	return req
}

// handleSearch runs a scoped search and returns the assembled context pack.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req := parseSearchRequest(r)
	if req.Query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	pack, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pack)
}

// handleSearchStream runs a search and flushes the assembled context pack as
// a single SSE event, preserving the teacher's sendSSE/flusher wiring.
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	req := parseSearchRequest(r)
	if req.Query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	pack, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		sendSSE(w, flusher, map[string]any{"error": err.Error(), "done": true})
		return
	}

	sendSSE(w, flusher, map[string]any{
		"context":      pack.AnswerContext,
		"attributions": pack.Attributions,
		"totalResults": pack.TotalResults,
		"done":         true,
	})
}

func sendSSE(w http.ResponseWriter, flusher http.Flusher, data map[string]any) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}

// handleStats returns aggregate catalog statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Infof("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}
