package main

import (
	"cnav/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cnav",
	Short: "cnav - code navigation intelligence",
	Long: `cnav is a code relationship query layer: it answers "what is here",
"what is related", and "how do I get from A to B" over an indexed code
graph, bounding every answer by navigation mode and cognitive-load
budget.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("cnav version {{.Version}}\n")
}
