package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"cnav/internal/storage"
)

var seedFormat string

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Import elements and relationships from a YAML fixture",
	Long: `Import a code graph from a YAML fixture. Relationships and decision
links reference elements by name, so fixtures stay readable and never
hardcode database ids.

Fixture format:
  elements:
    - file: internal/server/server.go
      name: handleRequest
      kind: function
      startLine: 40
      endLine: 95
      complexity: 0.55
  relationships:
    - source: handleRequest
      target: parseBody
      type: calls
      strength: 0.9
      cost: 0.2
  decisionLinks:
    - element: handleRequest
      itemType: adr
      itemId: ADR-014
      strength: 0.8`,
	Args: cobra.ExactArgs(1),
	Run:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(seedCmd)
}

// seedFixture is the YAML shape of an importable graph
type seedFixture struct {
	Elements []struct {
		File        string  `yaml:"file"`
		Name        string  `yaml:"name"`
		Kind        string  `yaml:"kind"`
		Language    string  `yaml:"language"`
		StartLine   int     `yaml:"startLine"`
		EndLine     int     `yaml:"endLine"`
		Complexity  float64 `yaml:"complexity"`
		LoadFactor  float64 `yaml:"loadFactor"`
		AccessCount int64   `yaml:"accessCount"`
		Notes       string  `yaml:"notes"`
	} `yaml:"elements"`

	Relationships []struct {
		Source     string  `yaml:"source"`
		Target     string  `yaml:"target"`
		Type       string  `yaml:"type"`
		Strength   float64 `yaml:"strength"`
		Confidence float64 `yaml:"confidence"`
		Cost       float64 `yaml:"cost"`
		Difficulty string  `yaml:"difficulty"`
	} `yaml:"relationships"`

	DecisionLinks []struct {
		Element  string  `yaml:"element"`
		ItemType string  `yaml:"itemType"`
		ItemID   string  `yaml:"itemId"`
		Strength float64 `yaml:"strength"`
	} `yaml:"decisionLinks"`
}

func runSeed(cmd *cobra.Command, args []string) {
	logger := newLogger(seedFormat)
	fixturePath := args[0]

	data, err := os.ReadFile(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading fixture: %v\n", err)
		os.Exit(1)
	}

	var fixture seedFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing fixture: %v\n", err)
		os.Exit(1)
	}

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	store := engine.Store()
	ctx := newContext()

	ids := make(map[string]int64, len(fixture.Elements))
	for _, fe := range fixture.Elements {
		language := fe.Language
		if language == "" {
			language = "go"
		}
		loadFactor := fe.LoadFactor
		if loadFactor == 0 {
			loadFactor = fe.Complexity
		}

		elem, err := storage.NewElement(fe.File, fe.Name, storage.ElementKind(fe.Kind),
			language, fe.StartLine, fe.EndLine, fe.Complexity, loadFactor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error in element %q: %v\n", fe.Name, err)
			os.Exit(1)
		}
		elem.AccessCount = fe.AccessCount
		elem.Notes = fe.Notes

		if err := store.InsertElement(ctx, elem); err != nil {
			fmt.Fprintf(os.Stderr, "Error inserting element %q: %v\n", fe.Name, err)
			os.Exit(1)
		}
		ids[fe.Name] = elem.ID
	}

	resolve := func(name, role string) int64 {
		id, ok := ids[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: %s element %q not defined in fixture\n", role, name)
			os.Exit(1)
		}
		return id
	}

	for _, fr := range fixture.Relationships {
		confidence := fr.Confidence
		if confidence == 0 {
			confidence = 0.8
		}
		difficulty := storage.TraversalDifficulty(fr.Difficulty)
		if difficulty == "" {
			difficulty = storage.DifficultyModerate
		}

		rel, err := storage.NewRelationship(
			resolve(fr.Source, "source"), resolve(fr.Target, "target"),
			storage.RelationType(fr.Type), fr.Strength, confidence, fr.Cost, difficulty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error in relationship %s->%s: %v\n", fr.Source, fr.Target, err)
			os.Exit(1)
		}
		if err := store.InsertRelationship(ctx, rel); err != nil {
			fmt.Fprintf(os.Stderr, "Error inserting relationship %s->%s: %v\n", fr.Source, fr.Target, err)
			os.Exit(1)
		}
	}

	for _, fl := range fixture.DecisionLinks {
		link := storage.DecisionLink{
			ElementID: resolve(fl.Element, "decision-link"),
			ItemType:  fl.ItemType,
			ItemID:    fl.ItemID,
			Strength:  fl.Strength,
		}
		if err := store.InsertDecisionLink(ctx, link); err != nil {
			fmt.Fprintf(os.Stderr, "Error inserting decision link for %q: %v\n", fl.Element, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Imported %d element(s), %d relationship(s), %d decision link(s)\n",
		len(fixture.Elements), len(fixture.Relationships), len(fixture.DecisionLinks))
}
