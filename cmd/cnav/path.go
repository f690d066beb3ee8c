package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	pathMaxDepth   int
	pathFilterCost bool
	pathFormat     string
)

var pathCmd = &cobra.Command{
	Use:   "path <source-id> <target-id>",
	Short: "Find a path between two elements",
	Long: `Find the best path between two elements through the relationship
graph: shortest first, then cheapest, then strongest. The search is
bounded by a hard depth ceiling.

Examples:
  cnav path 12 97
  cnav path 12 97 --max-depth=4
  cnav path 12 97 --avoid-heavy`,
	Args: cobra.ExactArgs(2),
	Run:  runPath,
}

func init() {
	pathCmd.Flags().IntVar(&pathMaxDepth, "max-depth", 0, "Maximum number of hops (0 = configured default)")
	pathCmd.Flags().BoolVar(&pathFilterCost, "avoid-heavy", false, "Skip edges above the configured cost ceiling")
	pathCmd.Flags().StringVar(&pathFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) {
	logger := newLogger(pathFormat)

	sourceID, err := parseElementID(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	targetID, err := parseElementID(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	path, err := engine.FindPath(ctx, sourceID, targetID, pathMaxDepth, pathFilterCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding path: %v\n", err)
		os.Exit(1)
	}

	resp := &PathResponseCLI{SourceID: sourceID, TargetID: targetID}
	if path != nil {
		resp.Found = true
		resp.Depth = path.Depth
		resp.TotalCost = path.TotalCost
		resp.StrengthProduct = path.StrengthProduct
		resp.AvgComplexity = path.AvgComplexity
		resp.EstimatedMinutes = path.EstimatedMinutes
		resp.Advisories = path.Advisories
		for _, e := range path.Elements {
			resp.Elements = append(resp.Elements, toElementCLI(e))
		}
		for _, t := range path.RelationTypes {
			resp.RelationTypes = append(resp.RelationTypes, string(t))
		}
	}

	printResponse(resp, pathFormat)
}
