// Package graph implements bounded path search over the code
// relationship graph.
package graph

import (
	"context"
	"fmt"
	"sort"

	"cnav/internal/config"
	naverr "cnav/internal/errors"
	"cnav/internal/logging"
	"cnav/internal/storage"
)

// NavigationPath is one request-scoped path between two elements. It
// is never persisted.
type NavigationPath struct {
	Elements      []*storage.Element     `json:"elements"`
	RelationTypes []storage.RelationType `json:"relationTypes"`

	Depth            int      `json:"depth"`
	TotalCost        float64  `json:"totalCost"`
	StrengthProduct  float64  `json:"strengthProduct"`
	AvgComplexity    float64  `json:"avgComplexity"`
	EstimatedMinutes float64  `json:"estimatedMinutes"`
	Advisories       []string `json:"advisories,omitempty"`
}

// Finder searches for paths through the relationship graph with a
// hard depth bound. The search is exponential in the branching factor,
// so the depth ceiling is a safety valve, not a tuning knob.
type Finder struct {
	store  *storage.Store
	logger *logging.Logger
	cfg    config.PathfinderConfig
}

// NewFinder builds a Finder over the given store.
func NewFinder(store *storage.Store, logger *logging.Logger, cfg config.PathfinderConfig) *Finder {
	if cfg.DefaultMaxDepth <= 0 {
		cfg.DefaultMaxDepth = 3
	}
	if cfg.DepthCeiling <= 0 {
		cfg.DepthCeiling = 4
	}
	if cfg.CostCeiling <= 0 {
		cfg.CostCeiling = 0.7
	}
	return &Finder{store: store, logger: logger.With("pathfinder"), cfg: cfg}
}

// pathState is one frontier entry during expansion.
type pathState struct {
	tail     int64
	ids      []int64
	types    []storage.RelationType
	depth    int
	strength float64
	cost     float64
}

// FindPath searches for a path from sourceID to targetID within
// maxDepth hops. maxDepth zero takes the configured default; values
// above the configured ceiling are clamped down to it. When filterCost
// is set, edges above the cost ceiling are never followed. Returns
// (nil, nil) when either endpoint is unknown or no path exists within
// the bound.
func (f *Finder) FindPath(ctx context.Context, sourceID, targetID int64, maxDepth int, filterCost bool) (*NavigationPath, error) {
	if maxDepth < 0 {
		return nil, naverr.NewValidation("maxDepth must be non-negative, got %d", maxDepth)
	}
	if maxDepth == 0 {
		maxDepth = f.cfg.DefaultMaxDepth
	}
	if maxDepth > f.cfg.DepthCeiling {
		f.logger.Debug("clamping path depth", map[string]interface{}{
			"requested": maxDepth,
			"ceiling":   f.cfg.DepthCeiling,
		})
		maxDepth = f.cfg.DepthCeiling
	}

	source, err := f.store.GetElement(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	target, err := f.store.GetElement(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if source == nil || target == nil {
		return nil, nil
	}

	if sourceID == targetID {
		return f.assemble(ctx, pathState{tail: sourceID, ids: []int64{sourceID}, strength: 1.0})
	}

	maxCost := 0.0
	if filterCost {
		maxCost = f.cfg.CostCeiling
	}

	start := pathState{
		tail:     sourceID,
		ids:      []int64{sourceID},
		strength: 1.0,
	}

	var hits []pathState
	if err := f.expand(ctx, start, targetID, maxDepth, maxCost, &hits); err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.depth != b.depth {
			return a.depth < b.depth
		}
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		return a.strength > b.strength
	})

	return f.assemble(ctx, hits[0])
}

// expand follows every admissible outgoing edge from the state's tail,
// recording states that reach the target and recursing on the rest
// until the depth budget runs out.
func (f *Finder) expand(ctx context.Context, state pathState, targetID int64, maxDepth int, maxCost float64, hits *[]pathState) error {
	if state.depth >= maxDepth {
		return nil
	}

	edges, err := f.store.OutgoingEdges(ctx, state.tail, maxCost)
	if err != nil {
		return err
	}

	for _, edge := range edges {
		if containsID(state.ids, edge.TargetID) {
			continue
		}

		next := pathState{
			tail:     edge.TargetID,
			ids:      appendCopy(state.ids, edge.TargetID),
			types:    append(append([]storage.RelationType(nil), state.types...), edge.Type),
			depth:    state.depth + 1,
			strength: state.strength * edge.Strength,
			cost:     state.cost + edge.LoadCost,
		}

		if edge.TargetID == targetID {
			*hits = append(*hits, next)
			continue
		}
		if err := f.expand(ctx, next, targetID, maxDepth, maxCost, hits); err != nil {
			return err
		}
	}
	return nil
}

// assemble loads the full elements for a winning state and derives the
// path aggregates and advisories.
func (f *Finder) assemble(ctx context.Context, state pathState) (*NavigationPath, error) {
	elements := make([]*storage.Element, 0, len(state.ids))
	totalComplexity := 0.0
	for _, id := range state.ids {
		elem, err := f.store.GetElement(ctx, id)
		if err != nil {
			return nil, err
		}
		if elem == nil {
			return nil, naverr.NewStorage(fmt.Sprintf("element %d vanished during path reconstruction", id), nil)
		}
		elements = append(elements, elem)
		totalComplexity += elem.ComplexityScore
	}

	avgComplexity := totalComplexity / float64(len(elements))

	path := &NavigationPath{
		Elements:         elements,
		RelationTypes:    state.types,
		Depth:            state.depth,
		TotalCost:        state.cost,
		StrengthProduct:  state.strength,
		AvgComplexity:    avgComplexity,
		EstimatedMinutes: estimateMinutes(state.depth, state.cost, avgComplexity),
	}
	path.Advisories = advisories(path)
	return path, nil
}

// estimateMinutes is a rough reading-time heuristic: a base cost per
// hop plus surcharges for accumulated load and average complexity.
func estimateMinutes(depth int, totalCost, avgComplexity float64) float64 {
	return float64(depth)*2.0 + totalCost*3.0 + avgComplexity*2.0
}

// advisories derives the human-readable warnings attached to a path.
func advisories(p *NavigationPath) []string {
	var out []string
	if p.TotalCost > 2.0 {
		out = append(out, "heavy path: cumulative cognitive cost is high, consider a break partway")
	}
	if p.Depth >= 3 {
		out = append(out, fmt.Sprintf("long chain: %d hops, keep notes on intermediate stops", p.Depth))
	}
	if p.AvgComplexity > 0.7 {
		out = append(out, "complex territory: most elements on this path are high-complexity")
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func appendCopy(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids)+1)
	out = append(out, ids...)
	return append(out, id)
}
