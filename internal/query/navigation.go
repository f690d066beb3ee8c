package query

import (
	"context"

	"github.com/google/uuid"

	naverr "cnav/internal/errors"
	"cnav/internal/filter"
	"cnav/internal/graph"
	"cnav/internal/scoring"
	"cnav/internal/storage"
)

// RelatedElements returns the neighbors of an element with the edge
// that reaches them, capped at the mode's ceiling. Duplicate edges for
// the same (source, target, type) keep only the strongest. Unknown ids
// yield an empty result.
func (e *Engine) RelatedElements(ctx context.Context, id int64, types []storage.RelationType, direction storage.Direction, mode Mode) ([]storage.Related, error) {
	if id <= 0 {
		return nil, naverr.NewValidation("element id must be positive, got %d", id)
	}
	if direction == "" {
		direction = storage.DirectionBoth
	}
	if !storage.ValidDirection(direction) {
		return nil, naverr.NewValidation("unknown direction %q", direction)
	}
	for _, t := range types {
		if !storage.ValidRelationType(t) {
			return nil, naverr.NewValidation("unknown relationship type %q", t)
		}
	}
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}

	key := relatedKey(id, direction, types, mode)
	limit := mode.limit(e.cfg.Navigation)
	v, hit, err := e.cache.GetOrCompute(key, func() (interface{}, error) {
		// Duplicate (source, target, type) rows collapse after the
		// fetch, so over-fetch to keep the cap a distinct-neighbor cap
		related, err := e.store.GetRelated(ctx, id, direction, types, limit*2)
		if err != nil {
			return nil, err
		}
		deduped := dedupRelated(related)
		if len(deduped) > limit {
			deduped = deduped[:limit]
		}
		return deduped, nil
	})
	if err != nil {
		return nil, err
	}
	e.traceHit("related_elements", hit, map[string]interface{}{"id": id, "mode": string(mode)})

	related, _ := v.([]storage.Related)
	return related, nil
}

// dedupRelated keeps the strongest edge per (source, target, type),
// preserving the incoming order of the survivors.
func dedupRelated(related []storage.Related) []storage.Related {
	type edgeKey struct {
		source int64
		target int64
		typ    storage.RelationType
	}

	best := make(map[edgeKey]int, len(related))
	out := make([]storage.Related, 0, len(related))
	for _, r := range related {
		k := edgeKey{r.Relationship.SourceID, r.Relationship.TargetID, r.Relationship.Type}
		if i, seen := best[k]; seen {
			if r.Relationship.Strength > out[i].Relationship.Strength {
				out[i] = r
			}
			continue
		}
		best[k] = len(out)
		out = append(out, r)
	}
	return out
}

// FindPath searches for a path between two elements. Results are not
// cached: path queries are rare and their state space is too large to
// key usefully.
func (e *Engine) FindPath(ctx context.Context, sourceID, targetID int64, maxDepth int, filterCost bool) (*graph.NavigationPath, error) {
	if sourceID <= 0 || targetID <= 0 {
		return nil, naverr.NewValidation("source and target ids must be positive")
	}
	return e.finder.FindPath(ctx, sourceID, targetID, maxDepth, filterCost)
}

// Recommendation is the output of the full navigation pipeline: the
// anchor, the strategy that bounded the output, and the ranked steps.
type Recommendation struct {
	QueryID  string             `json:"queryId"`
	Anchor   *storage.Element   `json:"anchor"`
	Strategy string             `json:"strategy"`
	Results  []filter.Candidate `json:"results"`
}

// Recommend runs the candidate → score → filter pipeline for the
// caller's navigation context. An unknown anchor yields an empty
// recommendation, not an error.
func (e *Engine) Recommend(ctx context.Context, nav scoring.NavigationContext, types []storage.RelationType) (*Recommendation, error) {
	if nav.Attention == "" {
		nav.Attention = scoring.AttentionSteady
	}
	if !scoring.ValidAttention(nav.Attention) {
		return nil, naverr.NewValidation("unknown attention state %q", nav.Attention)
	}
	if nav.ComplexityTolerance <= 0 {
		nav.ComplexityTolerance = 0.5
	}

	strat, err := e.strategies.ForAttention(nav.Attention)
	if err != nil {
		return nil, err
	}

	queryID := uuid.New().String()
	rec := &Recommendation{QueryID: queryID, Strategy: strat.Name}

	anchor, err := e.GetElement(ctx, nav.CurrentElementID)
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		return rec, nil
	}
	rec.Anchor = anchor

	// Candidates come in at the widest ceiling; the strategy cap does
	// the real narrowing.
	related, err := e.RelatedElements(ctx, anchor.ID, types, storage.DirectionBoth, ModeExplore)
	if err != nil {
		return nil, err
	}

	candidates := make([]filter.Candidate, 0, len(related))
	for i := range related {
		elem := &related[i].Element
		rel := &related[i].Relationship

		// Decision links are advisory; a failing lookup scores as unlinked
		links, err := e.linker.Links(ctx, elem.ID)
		if err != nil {
			e.logger.Debug("decision link lookup failed", map[string]interface{}{
				"element_id": elem.ID,
				"error":      err.Error(),
			})
			links = nil
		}

		relevance := scoring.Relevance(scoring.RelevanceInputs{
			Strength:        rel.Strength,
			TaskSignal:      e.signals.TaskRelevance(elem.ID),
			PatternSignal:   e.signals.PatternRelevance(elem.ID),
			Recent:          nav.IsRecent(elem.ID),
			HasDecisionLink: len(links) > 0,
		}, e.relWeights)

		load := scoring.CognitiveLoad(anchor, elem, e.loadWeights, nav.Attention)

		prior, hasPrior := e.signals.PriorSuccess(elem.ID)
		effectiveness := scoring.Effectiveness(scoring.EffectivenessInputs{
			Strength:             rel.Strength,
			TargetComplexity:     elem.ComplexityScore,
			ComplexityTolerance:  nav.ComplexityTolerance,
			PatternCompatibility: e.signals.PatternRelevance(elem.ID),
			PriorSuccess:         prior,
			HasPrior:             hasPrior,
		})

		candidates = append(candidates, filter.Candidate{
			Element:           elem,
			Relationship:      rel,
			Relevance:         relevance,
			Load:              load,
			Effectiveness:     effectiveness,
			PatternConfidence: e.signals.PatternConfidence(elem.ID),
			Friendly:          rel.Recommended(),
		})
	}

	rec.Results = filter.Apply(candidates, strat)

	e.logger.Debug("recommendation built", map[string]interface{}{
		"query_id":   queryID,
		"anchor_id":  anchor.ID,
		"strategy":   strat.Name,
		"candidates": len(candidates),
		"results":    len(rec.Results),
	})
	return rec, nil
}
