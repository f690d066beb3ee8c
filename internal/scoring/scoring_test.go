package scoring

import (
	"testing"

	"cnav/internal/storage"
)

func testElement(filePath string, kind storage.ElementKind, startLine int, complexity float64, accessCount int64) *storage.Element {
	return &storage.Element{
		FilePath:        filePath,
		Kind:            kind,
		StartLine:       startLine,
		EndLine:         startLine + 20,
		ComplexityScore: complexity,
		AccessCount:     accessCount,
	}
}

func TestRelevanceBounds(t *testing.T) {
	weights := DefaultRelevanceWeights()

	// Sweep the input grid; every score must land in [0, 1]
	values := []float64{-0.5, 0, 0.25, 0.5, 0.75, 1, 1.5}
	for _, strength := range values {
		for _, task := range values {
			for _, pattern := range values {
				for _, recent := range []bool{true, false} {
					for _, decision := range []bool{true, false} {
						score := Relevance(RelevanceInputs{
							Strength:        strength,
							TaskSignal:      task,
							PatternSignal:   pattern,
							Recent:          recent,
							HasDecisionLink: decision,
						}, weights)
						if score < 0 || score > 1 {
							t.Fatalf("relevance %.4f out of [0,1] for strength=%.2f task=%.2f pattern=%.2f",
								score, strength, task, pattern)
						}
					}
				}
			}
		}
	}
}

func TestRelevanceSignals(t *testing.T) {
	w := DefaultRelevanceWeights()
	base := RelevanceInputs{Strength: 0.5, TaskSignal: 0.5, PatternSignal: 0.5}

	t.Run("recency raises the score", func(t *testing.T) {
		recent := base
		recent.Recent = true
		if Relevance(recent, w) <= Relevance(base, w) {
			t.Error("recent candidate should score higher")
		}
	})

	t.Run("decision link raises the score", func(t *testing.T) {
		linked := base
		linked.HasDecisionLink = true
		if Relevance(linked, w) <= Relevance(base, w) {
			t.Error("decision-linked candidate should score higher")
		}
	})

	t.Run("degenerate weights fall back to defaults", func(t *testing.T) {
		got := Relevance(base, RelevanceWeights{})
		want := Relevance(base, w)
		if got != want {
			t.Errorf("zero weights gave %.4f, want default-weight %.4f", got, want)
		}
	})
}

func TestCognitiveLoadBounds(t *testing.T) {
	w := DefaultLoadWeights()
	attentions := []AttentionState{AttentionPeak, AttentionSteady, AttentionWandering, AttentionDepleted}

	complexities := []float64{0, 0.3, 0.7, 1}
	counts := []int64{0, 5, 20, 100}

	for _, sc := range complexities {
		for _, tc := range complexities {
			for _, count := range counts {
				for _, attention := range attentions {
					source := testElement("a.go", storage.KindFunction, 10, sc, 0)
					target := testElement("b.go", storage.KindFunction, 400, tc, count)
					load := CognitiveLoad(source, target, w, attention)
					if load < 0 || load > 1 {
						t.Fatalf("load %.4f out of [0,1] for sc=%.2f tc=%.2f count=%d attention=%s",
							load, sc, tc, count, attention)
					}
				}
			}
		}
	}
}

func TestCognitiveLoadComponents(t *testing.T) {
	w := DefaultLoadWeights()

	t.Run("cross-file costs more than same-file", func(t *testing.T) {
		source := testElement("a.go", storage.KindFunction, 10, 0.5, 10)
		sameFile := testElement("a.go", storage.KindFunction, 30, 0.5, 10)
		crossFile := testElement("b.go", storage.KindFunction, 30, 0.5, 10)

		if CognitiveLoad(source, crossFile, w, AttentionSteady) <= CognitiveLoad(source, sameFile, w, AttentionSteady) {
			t.Error("crossing a file boundary should cost more")
		}
	})

	t.Run("unfamiliar costs more than familiar", func(t *testing.T) {
		source := testElement("a.go", storage.KindFunction, 10, 0.5, 0)
		fresh := testElement("b.go", storage.KindFunction, 10, 0.5, 0)
		familiar := testElement("b.go", storage.KindFunction, 10, 0.5, 50)

		if CognitiveLoad(source, fresh, w, AttentionSteady) <= CognitiveLoad(source, familiar, w, AttentionSteady) {
			t.Error("never-visited target should cost more")
		}
	})

	t.Run("attention scales the load", func(t *testing.T) {
		source := testElement("a.go", storage.KindFunction, 10, 0.5, 0)
		target := testElement("b.go", storage.KindMethod, 10, 0.5, 0)

		peak := CognitiveLoad(source, target, w, AttentionPeak)
		depleted := CognitiveLoad(source, target, w, AttentionDepleted)
		if peak >= depleted {
			t.Errorf("peak load %.4f should be below depleted load %.4f", peak, depleted)
		}
	})

	t.Run("line distance matters within a file", func(t *testing.T) {
		source := testElement("a.go", storage.KindFunction, 10, 0.5, 10)
		near := testElement("a.go", storage.KindFunction, 20, 0.5, 10)
		far := testElement("a.go", storage.KindFunction, 480, 0.5, 10)

		if CognitiveLoad(source, far, w, AttentionSteady) <= CognitiveLoad(source, near, w, AttentionSteady) {
			t.Error("distant same-file target should cost more")
		}
	})
}

func TestEffectivenessBounds(t *testing.T) {
	values := []float64{-0.5, 0, 0.5, 1, 1.5}
	for _, strength := range values {
		for _, complexity := range values {
			for _, tolerance := range values {
				for _, pattern := range values {
					score := Effectiveness(EffectivenessInputs{
						Strength:             strength,
						TargetComplexity:     complexity,
						ComplexityTolerance:  tolerance,
						PatternCompatibility: pattern,
					})
					if score < 0 || score > 1 {
						t.Fatalf("effectiveness %.4f out of [0,1]", score)
					}
				}
			}
		}
	}
}

func TestEffectivenessComfortFit(t *testing.T) {
	base := EffectivenessInputs{Strength: 0.5, ComplexityTolerance: 0.5, PatternCompatibility: 0.5}

	within := base
	within.TargetComplexity = 0.4
	over := base
	over.TargetComplexity = 0.9

	if Effectiveness(within) <= Effectiveness(over) {
		t.Error("candidate within the comfort zone should score higher")
	}

	t.Run("prior replaces the neutral default", func(t *testing.T) {
		good := base
		good.PriorSuccess = 1.0
		good.HasPrior = true

		bad := base
		bad.PriorSuccess = 0.0
		bad.HasPrior = true

		neutral := Effectiveness(base)
		if Effectiveness(good) <= neutral || Effectiveness(bad) >= neutral {
			t.Error("known priors should move the score away from the neutral default")
		}
	})
}

func TestScoringPurity(t *testing.T) {
	// Identical inputs must give identical outputs across calls
	in := RelevanceInputs{Strength: 0.7, TaskSignal: 0.3, PatternSignal: 0.6, Recent: true}
	w := DefaultRelevanceWeights()
	first := Relevance(in, w)
	for i := 0; i < 10; i++ {
		if got := Relevance(in, w); got != first {
			t.Fatalf("relevance drifted between identical calls: %.6f != %.6f", got, first)
		}
	}

	source := testElement("a.go", storage.KindFunction, 10, 0.5, 3)
	target := testElement("b.go", storage.KindFunction, 90, 0.7, 9)
	lw := DefaultLoadWeights()
	firstLoad := CognitiveLoad(source, target, lw, AttentionWandering)
	for i := 0; i < 10; i++ {
		if got := CognitiveLoad(source, target, lw, AttentionWandering); got != firstLoad {
			t.Fatalf("load drifted between identical calls")
		}
	}
}

func TestLoadTierOf(t *testing.T) {
	tests := []struct {
		load float64
		want LoadTier
	}{
		{0.0, LoadMinimal},
		{0.24, LoadMinimal},
		{0.25, LoadLow},
		{0.49, LoadLow},
		{0.5, LoadModerate},
		{0.74, LoadModerate},
		{0.75, LoadHigh},
		{1.0, LoadHigh},
	}
	for _, tt := range tests {
		if got := LoadTierOf(tt.load); got != tt.want {
			t.Errorf("LoadTierOf(%.2f) = %q, want %q", tt.load, got, tt.want)
		}
	}
}

func TestAttentionMultipliers(t *testing.T) {
	tests := []struct {
		state AttentionState
		want  float64
	}{
		{AttentionPeak, 0.8},
		{AttentionSteady, 1.0},
		{AttentionWandering, 1.15},
		{AttentionDepleted, 1.3},
	}
	for _, tt := range tests {
		if got := tt.state.LoadMultiplier(); got != tt.want {
			t.Errorf("%s multiplier = %.2f, want %.2f", tt.state, got, tt.want)
		}
	}
}
