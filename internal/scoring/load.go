package scoring

import (
	"math"

	"cnav/internal/storage"
)

const (
	// contextSwitchPenalty applies when the transition crosses a file
	// or element-kind boundary
	contextSwitchPenalty = 1.0
	// sameFileDistanceSpan is the line distance at which same-file
	// distance penalty saturates
	sameFileDistanceSpan = 500.0
	// familiaritySaturation is the access count at which an element
	// counts as fully familiar
	familiaritySaturation = 20.0
)

// LoadWeights blends the four cognitive-load components. Normalized to
// sum to 1.0 before use.
type LoadWeights struct {
	Complexity    float64 `json:"complexity"`
	ContextSwitch float64 `json:"contextSwitch"`
	Distance      float64 `json:"distance"`
	Unfamiliarity float64 `json:"unfamiliarity"`
}

// DefaultLoadWeights returns the default 0.3/0.3/0.2/0.2 blend.
func DefaultLoadWeights() LoadWeights {
	return LoadWeights{
		Complexity:    0.3,
		ContextSwitch: 0.3,
		Distance:      0.2,
		Unfamiliarity: 0.2,
	}
}

// Normalized returns the weights scaled to sum to 1.0, falling back to
// defaults when degenerate.
func (w LoadWeights) Normalized() LoadWeights {
	sum := w.Complexity + w.ContextSwitch + w.Distance + w.Unfamiliarity
	if sum <= 0 {
		return DefaultLoadWeights()
	}
	return LoadWeights{
		Complexity:    w.Complexity / sum,
		ContextSwitch: w.ContextSwitch / sum,
		Distance:      w.Distance / sum,
		Unfamiliarity: w.Unfamiliarity / sum,
	}
}

// CognitiveLoad estimates the mental effort of moving from source to
// target, scaled by the attention state and clamped to [0, 1].
func CognitiveLoad(source, target *storage.Element, w LoadWeights, attention AttentionState) float64 {
	w = w.Normalized()

	complexity := (clamp01(source.ComplexityScore) + clamp01(target.ComplexityScore)) / 2

	switchPenalty := 0.0
	if source.FilePath != target.FilePath || source.Kind != target.Kind {
		switchPenalty = contextSwitchPenalty
	}

	distance := structuralDistance(source, target)

	unfamiliarity := 1 - math.Min(1, float64(target.AccessCount)/familiaritySaturation)

	load := w.Complexity*complexity +
		w.ContextSwitch*switchPenalty +
		w.Distance*distance +
		w.Unfamiliarity*unfamiliarity

	return clamp01(load * attention.LoadMultiplier())
}

// structuralDistance scores how far apart two elements sit: crossing a
// file boundary is the maximum; within a file it scales with line
// distance, capped.
func structuralDistance(source, target *storage.Element) float64 {
	if source.FilePath != target.FilePath {
		return 1.0
	}
	lines := math.Abs(float64(target.StartLine - source.StartLine))
	return math.Min(1, lines/sameFileDistanceSpan)
}

// LoadTier is one of four ordered cognitive-load buckets
type LoadTier string

const (
	LoadMinimal  LoadTier = "minimal"
	LoadLow      LoadTier = "low"
	LoadModerate LoadTier = "moderate"
	LoadHigh     LoadTier = "high"
)

// LoadTierOf bins a [0,1] load score into its tier.
func LoadTierOf(load float64) LoadTier {
	switch {
	case load < 0.25:
		return LoadMinimal
	case load < 0.5:
		return LoadLow
	case load < 0.75:
		return LoadModerate
	default:
		return LoadHigh
	}
}
