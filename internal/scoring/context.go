// Package scoring computes relevance, cognitive-load, and
// effectiveness scores for candidate navigation steps. Every scoring
// function is pure: identical inputs always give identical outputs.
package scoring

// AttentionState describes the caller's current focus capacity
type AttentionState string

const (
	// AttentionPeak is deep focus; load tolerance is highest
	AttentionPeak AttentionState = "peak"
	// AttentionSteady is normal working focus
	AttentionSteady AttentionState = "steady"
	// AttentionWandering is fragmented focus
	AttentionWandering AttentionState = "wandering"
	// AttentionDepleted is end-of-session fatigue; load tolerance is lowest
	AttentionDepleted AttentionState = "depleted"
)

// ValidAttention reports whether a is a known attention state.
func ValidAttention(a AttentionState) bool {
	switch a {
	case AttentionPeak, AttentionSteady, AttentionWandering, AttentionDepleted:
		return true
	default:
		return false
	}
}

// LoadMultiplier scales a computed cognitive load for the attention
// state: peak focus discounts load, depleted focus amplifies it.
func (a AttentionState) LoadMultiplier() float64 {
	switch a {
	case AttentionPeak:
		return 0.8
	case AttentionSteady:
		return 1.0
	case AttentionWandering:
		return 1.15
	case AttentionDepleted:
		return 1.3
	default:
		return 1.0
	}
}

// NavigationContext is the caller-supplied session snapshot that
// parameterizes scoring and filtering. Plain data, no callbacks.
type NavigationContext struct {
	CurrentElementID    int64          `json:"currentElementId"`
	TaskType            string         `json:"taskType,omitempty"`
	SessionMinutes      float64        `json:"sessionMinutes,omitempty"`
	RecentElementIDs    []int64        `json:"recentElementIds,omitempty"`
	Attention           AttentionState `json:"attention"`
	ComplexityTolerance float64        `json:"complexityTolerance"`
}

// IsRecent reports whether the element was in the caller's
// recent-navigation list.
func (c *NavigationContext) IsRecent(elementID int64) bool {
	for _, id := range c.RecentElementIDs {
		if id == elementID {
			return true
		}
	}
	return false
}

// SignalSource supplies the task-context and pattern/history relevance
// signals. These come from collaborating systems outside this core;
// the core only consumes their [0,1] outputs.
type SignalSource interface {
	// TaskRelevance scores how well an element fits the current task
	TaskRelevance(elementID int64) float64
	// PatternRelevance scores fit against the caller's navigation history
	PatternRelevance(elementID int64) float64
	// PatternConfidence reports how trusted the pattern signal is
	PatternConfidence(elementID int64) float64
	// PriorSuccess reports a known prior-usage success rate, if any
	PriorSuccess(elementID int64) (float64, bool)
}

// NeutralSignals is the default SignalSource when no collaborator is
// wired: mid-scale signals, no prior history.
type NeutralSignals struct{}

// TaskRelevance implements SignalSource.
func (NeutralSignals) TaskRelevance(int64) float64 { return 0.5 }

// PatternRelevance implements SignalSource.
func (NeutralSignals) PatternRelevance(int64) float64 { return 0.5 }

// PatternConfidence implements SignalSource.
func (NeutralSignals) PatternConfidence(int64) float64 { return 0.5 }

// PriorSuccess implements SignalSource.
func (NeutralSignals) PriorSuccess(int64) (float64, bool) { return 0, false }

// clamp01 bounds v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
