package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var touchCmd = &cobra.Command{
	Use:   "touch <element-id>",
	Short: "Record a visit to an element",
	Long: `Record a visit to an element, bumping its access-frequency counter.
Frequently visited elements rank higher in find results and score as
more familiar in recommendations.`,
	Args: cobra.ExactArgs(1),
	Run:  runTouch,
}

func init() {
	rootCmd.AddCommand(touchCmd)
}

func runTouch(cmd *cobra.Command, args []string) {
	logger := newLogger("human")

	id, err := parseElementID(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)

	if err := engine.RecordAccess(newContext(), id); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording access: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Recorded access to element %d\n", id)
}
