// Package filter bounds and orders scored candidate sets using named
// filtering strategies.
package filter

import (
	"cnav/internal/config"
	naverr "cnav/internal/errors"
	"cnav/internal/scoring"
)

// Strategy is a named bundle of filtering thresholds selected by
// attention state. Strategies come from configuration, never invented
// per call.
type Strategy struct {
	Name           string  `json:"name"`
	MaxResults     int     `json:"maxResults"`
	RelevanceFloor float64 `json:"relevanceFloor"`
	LoadCeiling    float64 `json:"loadCeiling"`

	// MinimalMin is the target number of minimal-load picks
	MinimalMin int `json:"minimalMin"`
	// HighMax is the hard maximum of high-load picks (0 forbids them)
	HighMax int `json:"highMax"`
}

// Strategies maps attention states to their strategy.
type Strategies map[scoring.AttentionState]Strategy

// FromConfig compiles the configured strategy table.
func FromConfig(cfgs []config.StrategyConfig) (Strategies, error) {
	if len(cfgs) == 0 {
		cfgs = config.DefaultConfig().Strategies
	}

	table := make(Strategies, len(cfgs))
	for _, c := range cfgs {
		attention := scoring.AttentionState(c.Attention)
		if !scoring.ValidAttention(attention) {
			return nil, naverr.NewValidation("strategy %q bound to unknown attention state %q", c.Name, c.Attention)
		}
		table[attention] = Strategy{
			Name:           c.Name,
			MaxResults:     c.MaxResults,
			RelevanceFloor: c.RelevanceFloor,
			LoadCeiling:    c.LoadCeiling,
			MinimalMin:     c.MinimalMin,
			HighMax:        c.HighMax,
		}
	}
	return table, nil
}

// ForAttention selects the strategy for an attention state, falling
// back to the steady-state strategy when the state has none.
func (s Strategies) ForAttention(attention scoring.AttentionState) (Strategy, error) {
	if strat, ok := s[attention]; ok {
		return strat, nil
	}
	if strat, ok := s[scoring.AttentionSteady]; ok {
		return strat, nil
	}
	return Strategy{}, naverr.NewValidation("no strategy configured for attention state %q", attention)
}
