package filter

import (
	"sort"

	"cnav/internal/scoring"
	"cnav/internal/storage"
)

// Candidate is one scored navigation step entering the filter
// pipeline.
type Candidate struct {
	Element      *storage.Element      `json:"element"`
	Relationship *storage.Relationship `json:"relationship"`

	Relevance     float64 `json:"relevance"`
	Load          float64 `json:"load"`
	Effectiveness float64 `json:"effectiveness"`

	// PatternConfidence is the trust in the pattern signal that fed
	// the scores
	PatternConfidence float64 `json:"patternConfidence"`
	// Friendly marks steps over an edge recommended for low-effort
	// traversal
	Friendly bool `json:"friendly"`

	// Rank is assigned by Apply, 1-based in presentation order
	Rank int `json:"rank"`
}

// LoadTier returns the candidate's cognitive-load tier.
func (c *Candidate) LoadTier() scoring.LoadTier {
	return scoring.LoadTierOf(c.Load)
}

// selectionScore orders candidates for admission. Presentation order
// is a separate concern handled after selection.
func (c *Candidate) selectionScore() float64 {
	return 0.6*c.Relevance + 0.4*c.Effectiveness
}

// Apply runs the full pipeline for one strategy: hard threshold drops,
// tier-quota selection up to the strategy cap, then presentation
// ordering with 1-based ranks. The result is never padded: fewer
// qualifying candidates simply means fewer results.
func Apply(candidates []Candidate, strat Strategy) []Candidate {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Relevance < strat.RelevanceFloor {
			continue
		}
		if c.Load > strat.LoadCeiling {
			continue
		}
		eligible = append(eligible, c)
	}

	picked := selectByTier(eligible, strat)
	sortForPresentation(picked)
	for i := range picked {
		picked[i].Rank = i + 1
	}
	return picked
}

// selectByTier admits up to strat.MaxResults candidates in selection
// order, reserving seats for minimal-load picks first and hard-capping
// high-load picks at strat.HighMax.
func selectByTier(eligible []Candidate, strat Strategy) []Candidate {
	if strat.MaxResults <= 0 || len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].selectionScore() > eligible[j].selectionScore()
	})

	picked := make([]Candidate, 0, strat.MaxResults)
	taken := make([]bool, len(eligible))
	highCount := 0

	// Seed the minimal-load quota before general admission so low-cost
	// steps are never crowded out by higher-scoring heavy ones.
	minimalWanted := strat.MinimalMin
	if minimalWanted > strat.MaxResults {
		minimalWanted = strat.MaxResults
	}
	for i := range eligible {
		if minimalWanted == 0 {
			break
		}
		if eligible[i].LoadTier() != scoring.LoadMinimal {
			continue
		}
		picked = append(picked, eligible[i])
		taken[i] = true
		minimalWanted--
	}

	for i := range eligible {
		if len(picked) >= strat.MaxResults {
			break
		}
		if taken[i] {
			continue
		}
		if eligible[i].LoadTier() == scoring.LoadHigh {
			if highCount >= strat.HighMax {
				continue
			}
			highCount++
		}
		picked = append(picked, eligible[i])
	}

	return picked
}

// sortForPresentation orders admitted candidates the way they are
// shown: recommended edges first, then by pattern confidence, lightest
// load, relevance, and edge strength.
func sortForPresentation(picked []Candidate) {
	sort.SliceStable(picked, func(i, j int) bool {
		a, b := &picked[i], &picked[j]
		if a.Friendly != b.Friendly {
			return a.Friendly
		}
		if a.PatternConfidence != b.PatternConfidence {
			return a.PatternConfidence > b.PatternConfidence
		}
		if a.Load != b.Load {
			return a.Load < b.Load
		}
		if a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		return a.Relationship.Strength > b.Relationship.Strength
	})
}
