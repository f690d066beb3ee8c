package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"cnav/internal/storage"
	"cnav/internal/version"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the code graph as a compressed snapshot",
	Long: `Export every element and relationship as a zstd-compressed JSON
snapshot, suitable for archiving or moving a graph between machines.

Examples:
  cnav export
  cnav export --output=/tmp/graph.json.zst`,
	Args: cobra.NoArgs,
	Run:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "Output path (default: .cnav/export-<id>.json.zst)")
	rootCmd.AddCommand(exportCmd)
}

// exportSnapshot is the serialized snapshot envelope
type exportSnapshot struct {
	SnapshotID    string                 `json:"snapshotId"`
	Version       string                 `json:"version"`
	ExportedAt    time.Time              `json:"exportedAt"`
	Elements      []storage.Element      `json:"elements"`
	Relationships []storage.Relationship `json:"relationships"`
}

func runExport(cmd *cobra.Command, args []string) {
	logger := newLogger("human")

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	store := engine.Store()
	ctx := newContext()

	elements, err := store.AllElements(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading elements: %v\n", err)
		os.Exit(1)
	}
	relationships, err := store.AllRelationships(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading relationships: %v\n", err)
		os.Exit(1)
	}

	snapshot := exportSnapshot{
		SnapshotID:    uuid.New().String(),
		Version:       version.Version,
		ExportedAt:    time.Now().UTC(),
		Elements:      elements,
		Relationships: relationships,
	}

	outPath := exportOutput
	if outPath == "" {
		outPath = filepath.Join(repoRoot, ".cnav",
			fmt.Sprintf("export-%s.json.zst", snapshot.SnapshotID[:8]))
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating compressor: %v\n", err)
		os.Exit(1)
	}

	if err := json.NewEncoder(enc).Encode(snapshot); err != nil {
		enc.Close()
		fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
		os.Exit(1)
	}
	if err := enc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error finalizing snapshot: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d element(s) and %d relationship(s) to %s\n",
		len(elements), len(relationships), outPath)
}
