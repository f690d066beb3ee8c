package decisions

import (
	"context"
	"testing"
	"time"

	"cnav/internal/logging"
	"cnav/internal/storage"
	"cnav/internal/testutil"
)

func TestStoreLinker(t *testing.T) {
	store := testutil.OpenTestStore(t)
	linker := NewStoreLinker(store, logging.Nop(), 250*time.Millisecond)
	ctx := context.Background()

	id := testutil.SeedElement(t, store, "a.go", "decided", storage.KindFunction, 10, 30, 0.4, 0)

	link := storage.DecisionLink{ElementID: id, ItemType: "adr", ItemID: "ADR-007", Strength: 0.8}
	if err := store.InsertDecisionLink(ctx, link); err != nil {
		t.Fatalf("InsertDecisionLink: %v", err)
	}

	t.Run("returns links", func(t *testing.T) {
		links, err := linker.Links(ctx, id)
		if err != nil {
			t.Fatalf("Links: %v", err)
		}
		if len(links) != 1 {
			t.Fatalf("got %d links, want 1", len(links))
		}
		if links[0].ItemID != "ADR-007" || links[0].Strength != 0.8 {
			t.Errorf("link = %+v", links[0])
		}
	})

	t.Run("unlinked element is empty", func(t *testing.T) {
		other := testutil.SeedElement(t, store, "b.go", "plain", storage.KindFunction, 10, 30, 0.4, 0)
		links, err := linker.Links(ctx, other)
		if err != nil {
			t.Fatalf("Links: %v", err)
		}
		if len(links) != 0 {
			t.Errorf("got %d links, want 0", len(links))
		}
	})

	t.Run("expired context degrades to no links", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		links, err := linker.Links(cancelled, id)
		if err != nil {
			t.Fatalf("Links should swallow lookup failures, got: %v", err)
		}
		if links != nil {
			t.Errorf("got %v, want nil on failed lookup", links)
		}
	})
}

func TestNopLinker(t *testing.T) {
	links, err := NopLinker{}.Links(context.Background(), 1)
	if err != nil || links != nil {
		t.Errorf("NopLinker = %v, %v, want nil, nil", links, err)
	}
}
