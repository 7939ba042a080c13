// Package pathresolver derives every on-disk location the engine writes to
// from a single user-data root, the way NewLanceDBStore bootstraps its data
// directory in the teacher's vector store adapter.
package pathresolver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

// Resolver derives storage paths from a single root directory.
type Resolver struct {
	root string
}

// New creates a Resolver rooted at root. An empty root falls back to
// "./data", matching the teacher's own default.
func New(root string) *Resolver {
	if root == "" {
		root = "./data"
	}
	return &Resolver{root: root}
}

// GlobalStorePath is the shared catalog/vector database location.
func (r *Resolver) GlobalStorePath() string {
	return filepath.Join(r.root, "global")
}

// LogsDir is where structured log output is written.
func (r *Resolver) LogsDir() string {
	return filepath.Join(r.root, "logs")
}

// WorkspaceStorePath is the per-workspace document root.
func (r *Resolver) WorkspaceStorePath(workspaceID string) string {
	return filepath.Join(r.root, "workspaces", workspaceID)
}

// EnsureAll creates every directory this resolver names. Idempotent:
// an existing directory is not an error. Only permission or I/O failures
// propagate.
func (r *Resolver) EnsureAll() error {
	dirs := []string{r.GlobalStorePath(), r.LogsDir(), filepath.Join(r.root, "workspaces")}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: creating %s: %v", entities.ErrStorageError, dir, err)
		}
	}
	return nil
}
