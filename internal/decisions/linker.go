// Package decisions models the external decision-record collaborator.
// The core only ever asks "which decision records touch this element";
// a slow or failing collaborator degrades to "no links".
package decisions

import (
	"context"
	"time"

	"cnav/internal/logging"
	"cnav/internal/storage"
)

// Link connects an element to an external decision record.
type Link struct {
	ItemType string  `json:"itemType"`
	ItemID   string  `json:"itemId"`
	Strength float64 `json:"strength"`
}

// Linker looks up decision links for an element.
type Linker interface {
	Links(ctx context.Context, elementID int64) ([]Link, error)
}

// StoreLinker serves decision links from the local decision_links
// table, bounded by a lookup timeout. Errors and timeouts are logged
// and reported as empty: the collaborator is advisory, never a
// request-failure source.
type StoreLinker struct {
	store   *storage.Store
	logger  *logging.Logger
	timeout time.Duration
}

// NewStoreLinker creates a store-backed linker.
func NewStoreLinker(store *storage.Store, logger *logging.Logger, timeout time.Duration) *StoreLinker {
	if timeout <= 0 {
		timeout = 250 * time.Millisecond
	}
	return &StoreLinker{
		store:   store,
		logger:  logger.With("decisions"),
		timeout: timeout,
	}
}

// Links returns the decision links for an element, or nil on any
// lookup problem.
func (l *StoreLinker) Links(ctx context.Context, elementID int64) ([]Link, error) {
	lctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	rows, err := l.store.DecisionLinks(lctx, elementID)
	if err != nil {
		l.logger.Debug("decision link lookup failed, treating as no links", map[string]interface{}{
			"element_id": elementID,
			"error":      err.Error(),
		})
		return nil, nil
	}

	links := make([]Link, 0, len(rows))
	for _, r := range rows {
		links = append(links, Link{ItemType: r.ItemType, ItemID: r.ItemID, Strength: r.Strength})
	}
	return links, nil
}

// NopLinker always reports no links. Used when decision lookups are
// disabled in config.
type NopLinker struct{}

// Links implements Linker.
func (NopLinker) Links(context.Context, int64) ([]Link, error) {
	return nil, nil
}
