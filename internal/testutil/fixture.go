// Package testutil provides shared test fixtures: temp-dir stores and
// element/relationship seed helpers.
package testutil

import (
	"context"
	"testing"

	"cnav/internal/config"
	"cnav/internal/logging"
	"cnav/internal/storage"
)

// OpenTestStore opens a fresh SQLite store in a temp directory, closed
// automatically when the test finishes.
func OpenTestStore(t *testing.T) *storage.Store {
	t.Helper()

	cfg := config.DefaultConfig()
	db, err := storage.Open(t.TempDir(), cfg.Storage, logging.Nop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	return storage.NewStore(db, logging.Nop())
}

// SeedElement inserts an element and returns its id.
func SeedElement(t *testing.T, store *storage.Store, filePath, name string, kind storage.ElementKind, startLine, endLine int, complexity float64, accessCount int64) int64 {
	t.Helper()

	elem, err := storage.NewElement(filePath, name, kind, "go", startLine, endLine, complexity, complexity)
	if err != nil {
		t.Fatalf("failed to build element %q: %v", name, err)
	}
	elem.AccessCount = accessCount

	if err := store.InsertElement(context.Background(), elem); err != nil {
		t.Fatalf("failed to insert element %q: %v", name, err)
	}
	return elem.ID
}

// SeedEdge inserts a relationship and returns its id.
func SeedEdge(t *testing.T, store *storage.Store, sourceID, targetID int64, relType storage.RelationType, strength, cost float64) int64 {
	t.Helper()

	rel, err := storage.NewRelationship(sourceID, targetID, relType, strength, 0.9, cost, storage.DifficultyEasy)
	if err != nil {
		t.Fatalf("failed to build relationship %d->%d: %v", sourceID, targetID, err)
	}
	if err := store.InsertRelationship(context.Background(), rel); err != nil {
		t.Fatalf("failed to insert relationship %d->%d: %v", sourceID, targetID, err)
	}
	return rel.ID
}
