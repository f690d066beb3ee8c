package scoring

// recencyLowConstant is the recency signal for elements outside the
// recent-navigation list.
const recencyLowConstant = 0.2

// RelevanceWeights weights the five relevance signals. Weights are
// normalized to sum to 1.0 before use, so the score stays in [0, 1].
type RelevanceWeights struct {
	Structural float64 `json:"structural"`
	Task       float64 `json:"task"`
	Pattern    float64 `json:"pattern"`
	Recency    float64 `json:"recency"`
	Decision   float64 `json:"decision"`
}

// DefaultRelevanceWeights returns the default 0.3/0.25/0.25/0.1/0.1 split.
func DefaultRelevanceWeights() RelevanceWeights {
	return RelevanceWeights{
		Structural: 0.3,
		Task:       0.25,
		Pattern:    0.25,
		Recency:    0.1,
		Decision:   0.1,
	}
}

// Normalized returns the weights scaled to sum to 1.0. Degenerate
// all-zero weights fall back to the defaults.
func (w RelevanceWeights) Normalized() RelevanceWeights {
	sum := w.Structural + w.Task + w.Pattern + w.Recency + w.Decision
	if sum <= 0 {
		return DefaultRelevanceWeights()
	}
	return RelevanceWeights{
		Structural: w.Structural / sum,
		Task:       w.Task / sum,
		Pattern:    w.Pattern / sum,
		Recency:    w.Recency / sum,
		Decision:   w.Decision / sum,
	}
}

// RelevanceInputs are the per-candidate signals feeding the relevance
// score.
type RelevanceInputs struct {
	// Strength is the structural strength of the connecting edge
	Strength float64
	// TaskSignal is the caller-supplied task-context relevance
	TaskSignal float64
	// PatternSignal is the caller-supplied pattern/history relevance
	PatternSignal float64
	// Recent marks candidates in the caller's recent-navigation list
	Recent bool
	// HasDecisionLink marks candidates linked to a decision record
	HasDecisionLink bool
}

// Relevance combines the weighted signals into a [0, 1] score.
func Relevance(in RelevanceInputs, w RelevanceWeights) float64 {
	w = w.Normalized()

	recency := recencyLowConstant
	if in.Recent {
		recency = 1.0
	}

	decision := 0.0
	if in.HasDecisionLink {
		decision = 1.0
	}

	score := w.Structural*clamp01(in.Strength) +
		w.Task*clamp01(in.TaskSignal) +
		w.Pattern*clamp01(in.PatternSignal) +
		w.Recency*recency +
		w.Decision*decision

	return clamp01(score)
}
