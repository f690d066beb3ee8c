package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cnav/internal/scoring"
)

var (
	recommendAttention string
	recommendTolerance float64
	recommendRecent    string
	recommendTypes     string
	recommendFormat    string
	recommendTouch     bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <element-id>",
	Short: "Recommend next navigation steps",
	Long: `Recommend where to go next from an element, scored for relevance
and cognitive load and bounded by a filtering strategy matched to the
current attention state.

Examples:
  cnav recommend 42
  cnav recommend 42 --attention=depleted
  cnav recommend 42 --attention=peak --tolerance=0.8 --recent=12,17`,
	Args: cobra.ExactArgs(1),
	Run:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendAttention, "attention", "steady", "Attention state (peak, steady, wandering, depleted)")
	recommendCmd.Flags().Float64Var(&recommendTolerance, "tolerance", 0.5, "Complexity comfort ceiling in [0, 1]")
	recommendCmd.Flags().StringVar(&recommendRecent, "recent", "", "Recently visited element ids (comma-separated)")
	recommendCmd.Flags().StringVar(&recommendTypes, "types", "", "Filter by relationship types (comma-separated)")
	recommendCmd.Flags().BoolVar(&recommendTouch, "touch", true, "Record an access on the anchor element")
	recommendCmd.Flags().StringVar(&recommendFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) {
	logger := newLogger(recommendFormat)

	id, err := parseElementID(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var recent []int64
	if recommendRecent != "" {
		for _, part := range strings.Split(recommendRecent, ",") {
			rid, err := parseElementID(strings.TrimSpace(part))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			recent = append(recent, rid)
		}
	}

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	nav := scoring.NavigationContext{
		CurrentElementID:    id,
		RecentElementIDs:    recent,
		Attention:           scoring.AttentionState(recommendAttention),
		ComplexityTolerance: recommendTolerance,
	}

	rec, err := engine.Recommend(ctx, nav, parseRelationTypes(recommendTypes))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building recommendation: %v\n", err)
		os.Exit(1)
	}

	// Count the visit after a successful lookup; staleness in the
	// counters is acceptable, a failed bump is not fatal
	if recommendTouch && rec.Anchor != nil {
		if err := engine.RecordAccess(ctx, id); err != nil {
			logger.Warn("Failed to record access", map[string]interface{}{
				"element_id": id,
				"error":      err.Error(),
			})
		}
	}

	resp := &RecommendResponseCLI{
		QueryID:  rec.QueryID,
		Strategy: rec.Strategy,
		Steps:    make([]RecommendStepCLI, 0, len(rec.Results)),
	}
	if rec.Anchor != nil {
		anchor := toElementCLI(rec.Anchor)
		resp.Anchor = &anchor
	}
	for i := range rec.Results {
		c := &rec.Results[i]
		resp.Steps = append(resp.Steps, RecommendStepCLI{
			Rank:          c.Rank,
			Element:       toElementCLI(c.Element),
			Relation:      string(c.Relationship.Type),
			Relevance:     c.Relevance,
			Load:          c.Load,
			LoadTier:      string(c.LoadTier()),
			Effectiveness: c.Effectiveness,
			Friendly:      c.Friendly,
		})
	}

	printResponse(resp, recommendFormat)
}
