package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cnav/internal/query"
)

var (
	fileComplexityFilter bool
	fileMode             string
	fileFormat           string
)

var fileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "List elements in a file",
	Long: `List the code elements defined in one file, in source order.

With --simple-only in focus mode, elements above the configured
complexity ceiling are dropped so the listing stays readable.

Examples:
  cnav file internal/server/server.go
  cnav file internal/server/server.go --mode=focus --simple-only`,
	Args: cobra.ExactArgs(1),
	Run:  runFile,
}

func init() {
	fileCmd.Flags().BoolVar(&fileComplexityFilter, "simple-only", false, "Drop high-complexity elements in focus mode")
	fileCmd.Flags().StringVar(&fileMode, "mode", "balanced", "Navigation mode (focus, balanced, explore)")
	fileCmd.Flags().StringVar(&fileFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(fileCmd)
}

func runFile(cmd *cobra.Command, args []string) {
	logger := newLogger(fileFormat)
	filePath := args[0]

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	mode, err := query.ParseMode(fileMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	elements, err := engine.ListInFile(ctx, filePath, fileComplexityFilter, mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing file: %v\n", err)
		os.Exit(1)
	}

	resp := &FileResponseCLI{
		FilePath: filePath,
		Mode:     string(mode),
		Filtered: fileComplexityFilter && mode == query.ModeFocus,
		Elements: make([]ElementCLI, 0, len(elements)),
	}
	for i := range elements {
		resp.Elements = append(resp.Elements, toElementCLI(&elements[i]))
	}

	printResponse(resp, fileFormat)
}
