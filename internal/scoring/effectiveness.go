package scoring

import "math"

// neutralPrior stands in when no prior-usage success is known.
const neutralPrior = 0.5

// EffectivenessInputs feed the effectiveness prediction for one
// candidate step.
type EffectivenessInputs struct {
	// Strength is the structural strength of the connecting edge
	Strength float64
	// TargetComplexity is the candidate element's complexity score
	TargetComplexity float64
	// ComplexityTolerance is the caller's comfort ceiling
	ComplexityTolerance float64
	// PatternCompatibility is the caller-supplied pattern-fit signal
	PatternCompatibility float64
	// PriorSuccess is a known historical success rate
	PriorSuccess float64
	// HasPrior reports whether PriorSuccess is known
	HasPrior bool
}

// Effectiveness predicts how likely this step is to help, in [0, 1]:
// a blend of structural strength, comfort-zone fit against the
// caller's complexity tolerance, pattern compatibility, and prior
// usage success (neutral default when unknown).
func Effectiveness(in EffectivenessInputs) float64 {
	fit := comfortFit(in.TargetComplexity, in.ComplexityTolerance)

	prior := neutralPrior
	if in.HasPrior {
		prior = clamp01(in.PriorSuccess)
	}

	score := 0.35*clamp01(in.Strength) +
		0.25*fit +
		0.2*clamp01(in.PatternCompatibility) +
		0.2*prior

	return clamp01(score)
}

// comfortFit scores how well a complexity sits inside the tolerance
// ceiling: full fit at or below tolerance, falling off linearly with
// the overshoot.
func comfortFit(complexity, tolerance float64) float64 {
	complexity = clamp01(complexity)
	tolerance = clamp01(tolerance)
	overshoot := math.Max(0, complexity-tolerance)
	return clamp01(1 - overshoot)
}
