package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cnav/internal/query"
	"cnav/internal/storage"
)

var (
	relatedTypes     string
	relatedDirection string
	relatedMode      string
	relatedFormat    string
)

var relatedCmd = &cobra.Command{
	Use:   "related <element-id>",
	Short: "Show elements related to one element",
	Long: `Show the neighbors of an element in the relationship graph, with
the edge that connects them, ordered strongest-first.

Examples:
  cnav related 42
  cnav related 42 --types=calls,uses --direction=out
  cnav related 42 --mode=explore`,
	Args: cobra.ExactArgs(1),
	Run:  runRelated,
}

func init() {
	relatedCmd.Flags().StringVar(&relatedTypes, "types", "", "Filter by relationship types (comma-separated)")
	relatedCmd.Flags().StringVar(&relatedDirection, "direction", "both", "Edge direction relative to the element (out, in, both)")
	relatedCmd.Flags().StringVar(&relatedMode, "mode", "balanced", "Navigation mode (focus, balanced, explore)")
	relatedCmd.Flags().StringVar(&relatedFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(relatedCmd)
}

// parseElementID parses a positive element id argument.
func parseElementID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid element id %q", arg)
	}
	return id, nil
}

// parseRelationTypes splits a comma-separated type list.
func parseRelationTypes(s string) []storage.RelationType {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	types := make([]storage.RelationType, 0, len(parts))
	for _, p := range parts {
		types = append(types, storage.RelationType(strings.TrimSpace(p)))
	}
	return types
}

func runRelated(cmd *cobra.Command, args []string) {
	logger := newLogger(relatedFormat)

	id, err := parseElementID(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	mode, err := query.ParseMode(relatedMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	related, err := engine.RelatedElements(ctx, id, parseRelationTypes(relatedTypes),
		storage.Direction(relatedDirection), mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching related elements: %v\n", err)
		os.Exit(1)
	}

	resp := &RelatedResponseCLI{
		ElementID: id,
		Direction: relatedDirection,
		Mode:      string(mode),
		Neighbors: make([]RelatedNeighborCLI, 0, len(related)),
	}
	for i := range related {
		r := &related[i]
		resp.Neighbors = append(resp.Neighbors, RelatedNeighborCLI{
			Element:     toElementCLI(&r.Element),
			Relation:    string(r.Relationship.Type),
			Strength:    r.Relationship.Strength,
			LoadCost:    r.Relationship.LoadCost,
			Difficulty:  string(r.Relationship.Difficulty),
			Recommended: r.Relationship.Recommended(),
		})
	}

	printResponse(resp, relatedFormat)
}
