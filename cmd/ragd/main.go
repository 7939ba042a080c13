// Command ragd is the composition root for appealsnavigator-rag: it wires
// config, adapters and usecases together and serves the HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/adapters/chunker"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/adapters/embedding"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/adapters/extractor"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/adapters/filewatcher"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/adapters/pathresolver"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/adapters/store"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/adapters/vectordb"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/config"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/ports"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/usecases"
	httpserver "github.com/savagelysubtle/appealsnavigator-rag/internal/infrastructure/http"
	"github.com/savagelysubtle/appealsnavigator-rag/internal/logging"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Errorf("loading configuration: %v", err)
		os.Exit(1)
	}

	paths := pathresolver.New(cfg.DataRoot)
	if err := paths.EnsureAll(); err != nil {
		logging.Errorf("preparing data directories: %v", err)
		os.Exit(1)
	}

	indexStore, err := store.New(filepath.Join(paths.GlobalStorePath(), "workspace.db"))
	if err != nil {
		logging.Errorf("opening index store: %v", err)
		os.Exit(1)
	}

	vectorStore := vectordb.NewMemoryStore()
	multiExtractor := extractor.New()
	hierarchicalChunker := chunker.New()
	embeddingClient := embedding.New(embedding.Config{
		Endpoint:    cfg.Embedding.Endpoint,
		Model:       cfg.Embedding.Model,
		APIKey:      cfg.Embedding.APIKey,
		DelayMs:     cfg.Embedding.DelayMs,
		MaxRetries:  cfg.Embedding.MaxRetries,
		RetryBaseMs: cfg.Embedding.RetryBaseMs,
	})

	indexer := usecases.NewIndexer(
		multiExtractor,
		hierarchicalChunker,
		indexStore,
		embeddingClient,
		vectorStore,
		cfg.Chunker.ChunkSize,
		cfg.Chunker.Overlap,
	)

	searcher := usecases.NewSearcher(
		embeddingClient,
		vectorStore,
		indexStore,
		usecases.NewContextAssembler(),
		cfg.Assembler.MaxContextLength,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch.Enabled {
		startWatcher(ctx, paths, indexer)
	}

	server, err := httpserver.NewServer(indexer, searcher, indexStore, cfg.Addr)
	if err != nil {
		logging.Errorf("creating http server: %v", err)
		os.Exit(1)
	}

	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("http server stopped: %v", err)
		}
	}()

	logging.OKf("appealsnavigator-rag ready, data root %s", cfg.DataRoot)
	waitForShutdown(cancel)
}

// startWatcher wires the optional FileWatcher-driven auto-reindex feature:
// creates on the global workspace docs directory re-index, removals delete.
func startWatcher(ctx context.Context, paths *pathresolver.Resolver, indexer *usecases.Indexer) {
	watcher, err := filewatcher.NewFSNotifyWatcher(nil)
	if err != nil {
		logging.Errorf("starting file watcher: %v", err)
		return
	}

	watchDir := paths.WorkspaceStorePath("")
	events, err := watcher.Watch(ctx, watchDir)
	if err != nil {
		logging.Errorf("watching %s: %v", watchDir, err)
		return
	}

	go func() {
		for event := range events {
			handleWatchEvent(ctx, indexer, event)
		}
	}()
}

func handleWatchEvent(ctx context.Context, indexer *usecases.Indexer, event ports.FileEvent) {
	switch event.Operation {
	case ports.FileCreated, ports.FileModified:
		result, err := indexer.Index(ctx, event.Path, false, "")
		if err != nil {
			logging.Errorf("auto re-index of %s: %v", event.Path, err)
			return
		}
		logging.Infof("auto re-indexed %s: %+v", event.Path, result)
	case ports.FileDeleted:
		// The watcher only reports a path, not the stable docID the
		// catalog keys on; resolve it before removing.
		doc, err := indexer.LookupByPath(ctx, event.Path)
		if err != nil || doc == nil {
			return
		}
		if err := indexer.Delete(ctx, doc.ID); err != nil {
			logging.Errorf("auto-delete of %s: %v", event.Path, err)
		}
	}
}

func waitForShutdown(cancel context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Infof("shutting down")
	cancel()
}
