package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cnav/internal/version"
)

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store and cache diagnostics",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	logger := newLogger(statusFormat)

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	store := engine.Store()
	ctx := newContext()

	elements, err := store.CountElements(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error counting elements: %v\n", err)
		os.Exit(1)
	}
	relationships, err := store.CountRelationships(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error counting relationships: %v\n", err)
		os.Exit(1)
	}
	schemaVersion, err := store.DB().SchemaVersion()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading schema version: %v\n", err)
		os.Exit(1)
	}

	stats := engine.Cache().GetStats()

	resp := &StatusResponseCLI{
		Version:        version.Version,
		DBPath:         store.DB().Path(),
		SchemaVersion:  schemaVersion,
		Elements:       elements,
		Relationships:  relationships,
		CacheEntries:   stats.Entries,
		CacheHits:      stats.Hits,
		CacheMisses:    stats.Misses,
		CacheEvictions: stats.Evictions,
	}

	printResponse(resp, statusFormat)
}
