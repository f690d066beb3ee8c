// Package query implements the graph query engine: cached, mode-bounded
// lookups over the element/relationship store, plus the recommendation
// pipeline that feeds scored candidates through the result filter.
package query

import (
	"context"
	"fmt"
	"time"

	"cnav/internal/cache"
	"cnav/internal/config"
	"cnav/internal/decisions"
	naverr "cnav/internal/errors"
	"cnav/internal/filter"
	"cnav/internal/graph"
	"cnav/internal/logging"
	"cnav/internal/scoring"
	"cnav/internal/storage"
)

// Mode is a preset output-size ceiling selected by the caller per query.
type Mode string

const (
	// ModeFocus keeps results small for deep-focus work
	ModeFocus Mode = "focus"
	// ModeBalanced is the everyday default
	ModeBalanced Mode = "balanced"
	// ModeExplore opens the ceiling for survey-style browsing
	ModeExplore Mode = "explore"
)

// ParseMode validates a caller-supplied mode string. Empty defaults to
// balanced.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFocus, ModeBalanced, ModeExplore:
		return Mode(s), nil
	case "":
		return ModeBalanced, nil
	default:
		return "", naverr.NewValidation("unknown navigation mode %q (want focus, balanced, or explore)", s)
	}
}

// limit returns the mode's result ceiling.
func (m Mode) limit(cfg config.NavigationConfig) int {
	switch m {
	case ModeFocus:
		return cfg.FocusLimit
	case ModeExplore:
		return cfg.ExploreLimit
	default:
		return cfg.BalancedLimit
	}
}

// Engine answers navigation queries against one store, sharing a query
// cache across concurrent requests. Everything else is per-request.
type Engine struct {
	store   *storage.Store
	cache   *cache.Cache
	finder  *graph.Finder
	linker  decisions.Linker
	signals scoring.SignalSource
	logger  *logging.Logger
	cfg     *config.Config

	strategies  filter.Strategies
	relWeights  scoring.RelevanceWeights
	loadWeights scoring.LoadWeights
}

// NewEngine wires an engine over an open store. A nil linker disables
// decision lookups; a nil signals source falls back to neutral signals.
func NewEngine(store *storage.Store, cfg *config.Config, linker decisions.Linker, signals scoring.SignalSource, logger *logging.Logger) (*Engine, error) {
	if store == nil {
		return nil, naverr.NewValidation("store is nil")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if linker == nil {
		linker = decisions.NopLinker{}
	}
	if signals == nil {
		signals = scoring.NeutralSignals{}
	}

	strategies, err := filter.FromConfig(cfg.Strategies)
	if err != nil {
		return nil, err
	}

	rw := scoring.RelevanceWeights{
		Structural: cfg.Scoring.Relevance.Structural,
		Task:       cfg.Scoring.Relevance.Task,
		Pattern:    cfg.Scoring.Relevance.Pattern,
		Recency:    cfg.Scoring.Relevance.Recency,
		Decision:   cfg.Scoring.Relevance.Decision,
	}
	lw := scoring.LoadWeights{
		Complexity:    cfg.Scoring.Load.Complexity,
		ContextSwitch: cfg.Scoring.Load.ContextSwitch,
		Distance:      cfg.Scoring.Load.Distance,
		Unfamiliarity: cfg.Scoring.Load.Unfamiliarity,
	}

	return &Engine{
		store:       store,
		cache:       cache.New(cfg.Cache.MaxEntries, time.Duration(cfg.Cache.TtlSeconds)*time.Second, nil),
		finder:      graph.NewFinder(store, logger, cfg.Pathfinder),
		linker:      linker,
		signals:     signals,
		logger:      logger.With("query"),
		cfg:         cfg,
		strategies:  strategies,
		relWeights:  rw.Normalized(),
		loadWeights: lw.Normalized(),
	}, nil
}

// Cache exposes the query cache for diagnostics.
func (e *Engine) Cache() *cache.Cache {
	return e.cache
}

// Store exposes the underlying store.
func (e *Engine) Store() *storage.Store {
	return e.store
}

// Cache keys end each segment with "|" so prefix invalidation of one
// element id never catches a longer id sharing its digits.
func elementKey(id int64) string {
	return fmt.Sprintf("element|%d|", id)
}

func findKey(name, filePath string, kind storage.ElementKind, mode Mode) string {
	return fmt.Sprintf("find|%s|%s|%s|%s|", name, filePath, kind, mode)
}

func fileKey(filePath string, withFilter bool, mode Mode) string {
	return fmt.Sprintf("file|%s|%t|%s|", filePath, withFilter, mode)
}

func relatedKey(id int64, direction storage.Direction, types []storage.RelationType, mode Mode) string {
	key := fmt.Sprintf("related|%d|%s|", id, direction)
	for _, t := range types {
		key += string(t) + ","
	}
	return key + "|" + string(mode) + "|"
}

// GetElement returns one element by id through the cache, or nil when
// absent. Absence is cached like any other answer.
func (e *Engine) GetElement(ctx context.Context, id int64) (*storage.Element, error) {
	if id <= 0 {
		return nil, naverr.NewValidation("element id must be positive, got %d", id)
	}

	v, hit, err := e.cache.GetOrCompute(elementKey(id), func() (interface{}, error) {
		return e.store.GetElement(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	e.traceHit("get_element", hit, map[string]interface{}{"id": id})

	elem, _ := v.(*storage.Element)
	return elem, nil
}

// FindOptions narrow a find-by-name query.
type FindOptions struct {
	FilePath string
	Kind     storage.ElementKind
}

// FindByName returns elements whose name contains name, capped at the
// mode's ceiling, ordered complexity-ascending then
// access-frequency-descending.
func (e *Engine) FindByName(ctx context.Context, name string, opts FindOptions, mode Mode) ([]storage.Element, error) {
	if name == "" {
		return nil, naverr.NewValidation("name must not be empty")
	}
	if opts.Kind != "" && !storage.ValidKind(opts.Kind) {
		return nil, naverr.NewValidation("unknown element kind %q", opts.Kind)
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	key := findKey(name, opts.FilePath, opts.Kind, mode)
	v, hit, err := e.cache.GetOrCompute(key, func() (interface{}, error) {
		return e.store.FindElements(ctx, storage.FindFilter{
			Name:     name,
			FilePath: opts.FilePath,
			Kind:     opts.Kind,
			Limit:    mode.limit(e.cfg.Navigation),
		})
	})
	if err != nil {
		return nil, err
	}
	e.traceHit("find_by_name", hit, map[string]interface{}{"name": name, "mode": string(mode)})

	elements, _ := v.([]storage.Element)
	return elements, nil
}

// ListInFile returns a file's elements in source order, capped at the
// mode's ceiling. With withComplexityFilter set in focus mode, elements
// above the configured complexity ceiling are dropped before ordering.
func (e *Engine) ListInFile(ctx context.Context, filePath string, withComplexityFilter bool, mode Mode) ([]storage.Element, error) {
	if filePath == "" {
		return nil, naverr.NewValidation("filePath must not be empty")
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	maxComplexity := 0.0
	if withComplexityFilter && mode == ModeFocus {
		maxComplexity = e.cfg.Navigation.FocusComplexityCeiling
	}

	key := fileKey(filePath, withComplexityFilter, mode)
	v, hit, err := e.cache.GetOrCompute(key, func() (interface{}, error) {
		return e.store.ListElementsInFile(ctx, filePath, maxComplexity, mode.limit(e.cfg.Navigation))
	})
	if err != nil {
		return nil, err
	}
	e.traceHit("list_in_file", hit, map[string]interface{}{"file": filePath, "mode": string(mode)})

	elements, _ := v.([]storage.Element)
	return elements, nil
}

// RecordAccess bumps an element's access counter and invalidates every
// cached answer that embeds access counts in its content or ordering.
func (e *Engine) RecordAccess(ctx context.Context, id int64) error {
	if id <= 0 {
		return naverr.NewValidation("element id must be positive, got %d", id)
	}
	if err := e.store.RecordAccess(ctx, id); err != nil {
		return err
	}

	removed := e.cache.InvalidatePrefix(elementKey(id))
	removed += e.cache.InvalidatePrefix("find|")
	removed += e.cache.InvalidatePrefix("file|")
	removed += e.cache.InvalidatePrefix("related|")
	if removed > 0 {
		e.logger.Debug("invalidated cached queries after access", map[string]interface{}{
			"element_id": id,
			"removed":    removed,
		})
	}
	return nil
}

func (e *Engine) traceHit(op string, hit bool, fields map[string]interface{}) {
	fields["op"] = op
	fields["cache_hit"] = hit
	e.logger.Debug("query served", fields)
}
