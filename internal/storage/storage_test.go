package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cnav/internal/config"
	naverr "cnav/internal/errors"
	"cnav/internal/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := config.DefaultConfig()
	db, err := Open(t.TempDir(), cfg.Storage, logging.Nop())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewStore(db, logging.Nop())
}

func mustInsertElement(t *testing.T, store *Store, filePath, name string, kind ElementKind, startLine int, complexity float64, accessCount int64) int64 {
	t.Helper()

	elem, err := NewElement(filePath, name, kind, "go", startLine, startLine+20, complexity, complexity)
	if err != nil {
		t.Fatalf("NewElement(%q): %v", name, err)
	}
	elem.AccessCount = accessCount
	if err := store.InsertElement(context.Background(), elem); err != nil {
		t.Fatalf("InsertElement(%q): %v", name, err)
	}
	return elem.ID
}

func mustInsertEdge(t *testing.T, store *Store, source, target int64, relType RelationType, strength, cost float64) int64 {
	t.Helper()

	rel, err := NewRelationship(source, target, relType, strength, 0.9, cost, DifficultyEasy)
	if err != nil {
		t.Fatalf("NewRelationship(%d->%d): %v", source, target, err)
	}
	if err := store.InsertRelationship(context.Background(), rel); err != nil {
		t.Fatalf("InsertRelationship(%d->%d): %v", source, target, err)
	}
	return rel.ID
}

func TestElementRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id := mustInsertElement(t, store, "internal/a.go", "Parse", KindFunction, 10, 0.42, 3)

	elem, err := store.GetElement(ctx, id)
	if err != nil {
		t.Fatalf("GetElement: %v", err)
	}
	if elem == nil {
		t.Fatal("expected element, got nil")
	}
	if elem.Name != "Parse" || elem.Kind != KindFunction {
		t.Errorf("got %q/%q, want Parse/function", elem.Name, elem.Kind)
	}
	if elem.ComplexityTier != TierSimple {
		t.Errorf("tier = %q, want simple", elem.ComplexityTier)
	}

	t.Run("absent id is nil, not error", func(t *testing.T) {
		elem, err := store.GetElement(ctx, 99999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elem != nil {
			t.Errorf("expected nil for absent element, got %+v", elem)
		}
	})
}

func TestElementValidation(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (*Element, error)
	}{
		{"empty name", func() (*Element, error) {
			return NewElement("a.go", "", KindFunction, "go", 1, 2, 0.5, 0.5)
		}},
		{"unknown kind", func() (*Element, error) {
			return NewElement("a.go", "x", "widget", "go", 1, 2, 0.5, 0.5)
		}},
		{"inverted line range", func() (*Element, error) {
			return NewElement("a.go", "x", KindFunction, "go", 10, 5, 0.5, 0.5)
		}},
		{"complexity out of range", func() (*Element, error) {
			return NewElement("a.go", "x", KindFunction, "go", 1, 2, 1.5, 0.5)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.fn(); !naverr.IsValidation(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestFindElementsOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	// Same name, different complexity and access counts
	a := mustInsertElement(t, store, "a.go", "foo", KindFunction, 10, 0.2, 10)
	b := mustInsertElement(t, store, "b.go", "foo", KindFunction, 10, 0.2, 3)
	c := mustInsertElement(t, store, "c.go", "foo", KindFunction, 10, 0.8, 50)

	elements, err := store.FindElements(ctx, FindFilter{Name: "foo", Limit: 5})
	if err != nil {
		t.Fatalf("FindElements: %v", err)
	}
	if len(elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(elements))
	}

	// Simple before complex; equal complexity breaks on access count
	want := []int64{a, b, c}
	for i, id := range want {
		if elements[i].ID != id {
			t.Errorf("position %d: got id %d, want %d", i, elements[i].ID, id)
		}
	}

	t.Run("stable across reruns", func(t *testing.T) {
		again, err := store.FindElements(ctx, FindFilter{Name: "foo", Limit: 5})
		if err != nil {
			t.Fatalf("FindElements: %v", err)
		}
		for i := range elements {
			if again[i].ID != elements[i].ID {
				t.Fatalf("ordering changed between identical queries at position %d", i)
			}
		}
	})

	t.Run("limit caps results", func(t *testing.T) {
		capped, err := store.FindElements(ctx, FindFilter{Name: "foo", Limit: 2})
		if err != nil {
			t.Fatalf("FindElements: %v", err)
		}
		if len(capped) != 2 {
			t.Errorf("got %d elements, want 2", len(capped))
		}
	})

	t.Run("kind filter", func(t *testing.T) {
		mustInsertElement(t, store, "d.go", "foobar", KindStruct, 10, 0.1, 0)
		structs, err := store.FindElements(ctx, FindFilter{Name: "foo", Kind: KindStruct, Limit: 10})
		if err != nil {
			t.Fatalf("FindElements: %v", err)
		}
		if len(structs) != 1 || structs[0].Kind != KindStruct {
			t.Errorf("kind filter returned %d results", len(structs))
		}
	})
}

func TestFindElementsEscapesWildcards(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	mustInsertElement(t, store, "a.go", "foo_bar", KindFunction, 10, 0.2, 0)
	mustInsertElement(t, store, "b.go", "fooXbar", KindFunction, 10, 0.2, 0)

	// "_" must match literally, not as a single-character wildcard
	elements, err := store.FindElements(ctx, FindFilter{Name: "foo_bar", Limit: 10})
	if err != nil {
		t.Fatalf("FindElements: %v", err)
	}
	if len(elements) != 1 || elements[0].Name != "foo_bar" {
		t.Errorf("got %d matches, want exactly foo_bar", len(elements))
	}
}

func TestListElementsInFile(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	mustInsertElement(t, store, "svc.go", "third", KindFunction, 300, 0.9, 0)
	mustInsertElement(t, store, "svc.go", "first", KindFunction, 10, 0.3, 0)
	mustInsertElement(t, store, "svc.go", "second", KindFunction, 100, 0.5, 0)
	mustInsertElement(t, store, "other.go", "elsewhere", KindFunction, 10, 0.3, 0)

	t.Run("source order", func(t *testing.T) {
		elements, err := store.ListElementsInFile(ctx, "svc.go", 0, 10)
		if err != nil {
			t.Fatalf("ListElementsInFile: %v", err)
		}
		if len(elements) != 3 {
			t.Fatalf("got %d elements, want 3", len(elements))
		}
		names := []string{elements[0].Name, elements[1].Name, elements[2].Name}
		if names[0] != "first" || names[1] != "second" || names[2] != "third" {
			t.Errorf("order = %v, want [first second third]", names)
		}
	})

	t.Run("complexity ceiling", func(t *testing.T) {
		elements, err := store.ListElementsInFile(ctx, "svc.go", 0.6, 10)
		if err != nil {
			t.Fatalf("ListElementsInFile: %v", err)
		}
		for _, e := range elements {
			if e.ComplexityScore > 0.6 {
				t.Errorf("element %q complexity %.2f exceeds ceiling", e.Name, e.ComplexityScore)
			}
		}
		if len(elements) != 2 {
			t.Errorf("got %d elements, want 2", len(elements))
		}
	})
}

func TestGetRelated(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	anchor := mustInsertElement(t, store, "a.go", "anchor", KindFunction, 10, 0.4, 0)
	strong := mustInsertElement(t, store, "b.go", "strong", KindFunction, 10, 0.4, 0)
	weak := mustInsertElement(t, store, "c.go", "weak", KindFunction, 10, 0.4, 0)
	caller := mustInsertElement(t, store, "d.go", "caller", KindFunction, 10, 0.4, 0)

	mustInsertEdge(t, store, anchor, strong, RelCalls, 0.9, 0.2)
	mustInsertEdge(t, store, anchor, weak, RelUses, 0.3, 0.2)
	mustInsertEdge(t, store, caller, anchor, RelCalls, 0.7, 0.2)

	t.Run("outgoing ordered by strength", func(t *testing.T) {
		related, err := store.GetRelated(ctx, anchor, DirectionOut, nil, 10)
		if err != nil {
			t.Fatalf("GetRelated: %v", err)
		}
		if len(related) != 2 {
			t.Fatalf("got %d related, want 2", len(related))
		}
		if related[0].Element.ID != strong || related[1].Element.ID != weak {
			t.Errorf("order = [%d %d], want [%d %d]",
				related[0].Element.ID, related[1].Element.ID, strong, weak)
		}
	})

	t.Run("incoming", func(t *testing.T) {
		related, err := store.GetRelated(ctx, anchor, DirectionIn, nil, 10)
		if err != nil {
			t.Fatalf("GetRelated: %v", err)
		}
		if len(related) != 1 || related[0].Element.ID != caller {
			t.Fatalf("expected only the caller, got %d results", len(related))
		}
	})

	t.Run("both unions directions", func(t *testing.T) {
		related, err := store.GetRelated(ctx, anchor, DirectionBoth, nil, 10)
		if err != nil {
			t.Fatalf("GetRelated: %v", err)
		}
		if len(related) != 3 {
			t.Errorf("got %d related, want 3", len(related))
		}
	})

	t.Run("type filter", func(t *testing.T) {
		related, err := store.GetRelated(ctx, anchor, DirectionOut, []RelationType{RelCalls}, 10)
		if err != nil {
			t.Fatalf("GetRelated: %v", err)
		}
		if len(related) != 1 || related[0].Relationship.Type != RelCalls {
			t.Errorf("type filter returned %d results", len(related))
		}
	})

	t.Run("unknown id yields empty", func(t *testing.T) {
		related, err := store.GetRelated(ctx, 99999, DirectionBoth, nil, 10)
		if err != nil {
			t.Fatalf("GetRelated: %v", err)
		}
		if len(related) != 0 {
			t.Errorf("got %d related for unknown id, want 0", len(related))
		}
	})
}

func TestOutgoingEdgesCostFilter(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := mustInsertElement(t, store, "a.go", "a", KindFunction, 10, 0.4, 0)
	b := mustInsertElement(t, store, "b.go", "b", KindFunction, 10, 0.4, 0)
	c := mustInsertElement(t, store, "c.go", "c", KindFunction, 10, 0.4, 0)

	mustInsertEdge(t, store, a, b, RelCalls, 0.9, 0.9)
	mustInsertEdge(t, store, a, c, RelCalls, 0.5, 0.2)

	edges, err := store.OutgoingEdges(ctx, a, 0.7)
	if err != nil {
		t.Fatalf("OutgoingEdges: %v", err)
	}
	if len(edges) != 1 || edges[0].TargetID != c {
		t.Fatalf("cost filter kept %d edges, want only the cheap one", len(edges))
	}

	all, err := store.OutgoingEdges(ctx, a, 0)
	if err != nil {
		t.Fatalf("OutgoingEdges: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered got %d edges, want 2", len(all))
	}
}

func TestRecordAccess(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id := mustInsertElement(t, store, "a.go", "hot", KindFunction, 10, 0.4, 0)

	for i := 0; i < 3; i++ {
		if err := store.RecordAccess(ctx, id); err != nil {
			t.Fatalf("RecordAccess: %v", err)
		}
	}

	elem, err := store.GetElement(ctx, id)
	if err != nil {
		t.Fatalf("GetElement: %v", err)
	}
	if elem.AccessCount != 3 {
		t.Errorf("access count = %d, want 3", elem.AccessCount)
	}
}

func TestRecordTraversal(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := mustInsertElement(t, store, "a.go", "a", KindFunction, 10, 0.4, 0)
	b := mustInsertElement(t, store, "b.go", "b", KindFunction, 10, 0.4, 0)
	edge := mustInsertEdge(t, store, a, b, RelCalls, 0.9, 0.2)

	if err := store.RecordTraversal(ctx, edge, 100); err != nil {
		t.Fatalf("RecordTraversal: %v", err)
	}
	if err := store.RecordTraversal(ctx, edge, 200); err != nil {
		t.Fatalf("RecordTraversal: %v", err)
	}

	edges, err := store.OutgoingEdges(ctx, a, 0)
	if err != nil {
		t.Fatalf("OutgoingEdges: %v", err)
	}
	if edges[0].TraversalCount != 2 {
		t.Errorf("traversal count = %d, want 2", edges[0].TraversalCount)
	}
	if edges[0].AvgTraversalMs != 150 {
		t.Errorf("avg traversal = %.1f, want 150", edges[0].AvgTraversalMs)
	}
}

func TestDecisionLinks(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id := mustInsertElement(t, store, "a.go", "decided", KindFunction, 10, 0.4, 0)

	link := DecisionLink{ElementID: id, ItemType: "adr", ItemID: "ADR-001", Strength: 0.8}
	if err := store.InsertDecisionLink(ctx, link); err != nil {
		t.Fatalf("InsertDecisionLink: %v", err)
	}

	// Replacing the same (element, item) pair keeps one row
	link.Strength = 0.9
	if err := store.InsertDecisionLink(ctx, link); err != nil {
		t.Fatalf("InsertDecisionLink: %v", err)
	}

	links, err := store.DecisionLinks(ctx, id)
	if err != nil {
		t.Fatalf("DecisionLinks: %v", err)
	}
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	if links[0].Strength != 0.9 {
		t.Errorf("strength = %.2f, want 0.9", links[0].Strength)
	}
}

func TestSchemaVersion(t *testing.T) {
	store := openTestStore(t)

	v, err := store.DB().SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion: %v", err)
	}
	if v != 1 {
		t.Errorf("schema version = %d, want 1", v)
	}
}

func TestWrapErrClassifiesDeadlines(t *testing.T) {
	if err := wrapErr("query", context.DeadlineExceeded); !naverr.IsTimeout(err) {
		t.Errorf("bare deadline mapped to %s, want TIMEOUT", naverr.CodeOf(err))
	}

	// Drivers usually hand back the deadline wrapped in their own error
	wrapped := fmt.Errorf("driver: %w", context.DeadlineExceeded)
	if err := wrapErr("query", wrapped); !naverr.IsTimeout(err) {
		t.Errorf("wrapped deadline mapped to %s, want TIMEOUT", naverr.CodeOf(err))
	}

	if err := wrapErr("query", errors.New("database is locked")); !naverr.IsStorage(err) {
		t.Errorf("driver error mapped to %s, want STORAGE_FAILURE", naverr.CodeOf(err))
	}
}
