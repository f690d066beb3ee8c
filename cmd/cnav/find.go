package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cnav/internal/query"
	"cnav/internal/storage"
)

var (
	findFile   string
	findKind   string
	findMode   string
	findFormat string
)

var findCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find elements by name",
	Long: `Find code elements whose name contains the given substring.

Results are ordered simplest-first (complexity ascending), then by how
often they have been visited, and capped by the navigation mode.

Examples:
  cnav find handleRequest
  cnav find handleRequest --kind=function
  cnav find parse --file=internal/parser/parser.go --mode=focus`,
	Args: cobra.ExactArgs(1),
	Run:  runFind,
}

func init() {
	findCmd.Flags().StringVar(&findFile, "file", "", "Limit results to one file path")
	findCmd.Flags().StringVar(&findKind, "kind", "", "Filter by element kind (function, method, class, ...)")
	findCmd.Flags().StringVar(&findMode, "mode", "balanced", "Navigation mode (focus, balanced, explore)")
	findCmd.Flags().StringVar(&findFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) {
	logger := newLogger(findFormat)
	name := args[0]

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	mode, err := query.ParseMode(findMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	elements, err := engine.FindByName(ctx, name, query.FindOptions{
		FilePath: findFile,
		Kind:     storage.ElementKind(findKind),
	}, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding elements: %v\n", err)
		os.Exit(1)
	}

	resp := &FindResponseCLI{
		Query:        name,
		Mode:         string(mode),
		TotalMatches: len(elements),
		Elements:     make([]ElementCLI, 0, len(elements)),
	}
	for i := range elements {
		resp.Elements = append(resp.Elements, toElementCLI(&elements[i]))
	}

	printResponse(resp, findFormat)
}

// printResponse formats and prints a CLI response, exiting on failure.
func printResponse(resp interface{}, format string) {
	out, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}
