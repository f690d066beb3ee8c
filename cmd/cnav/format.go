package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"cnav/internal/storage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *FindResponseCLI:
		return formatFindHuman(v)
	case *FileResponseCLI:
		return formatFileHuman(v)
	case *RelatedResponseCLI:
		return formatRelatedHuman(v)
	case *PathResponseCLI:
		return formatPathHuman(v)
	case *RecommendResponseCLI:
		return formatRecommendHuman(v)
	case *StatusResponseCLI:
		return formatStatusHuman(v)
	default:
		// Unknown types fall back to JSON
		return formatJSON(resp)
	}
}

// ElementCLI is the compact element rendering shared by all commands
type ElementCLI struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Kind        string  `json:"kind"`
	FilePath    string  `json:"filePath"`
	StartLine   int     `json:"startLine"`
	EndLine     int     `json:"endLine"`
	Complexity  float64 `json:"complexity"`
	Tier        string  `json:"tier"`
	AccessCount int64   `json:"accessCount"`
}

func toElementCLI(e *storage.Element) ElementCLI {
	return ElementCLI{
		ID:          e.ID,
		Name:        e.Name,
		Kind:        string(e.Kind),
		FilePath:    e.FilePath,
		StartLine:   e.StartLine,
		EndLine:     e.EndLine,
		Complexity:  e.ComplexityScore,
		Tier:        string(e.ComplexityTier),
		AccessCount: e.AccessCount,
	}
}

func writeElementLine(b *strings.Builder, e ElementCLI) {
	b.WriteString(fmt.Sprintf("  [%d] %s (%s, %s)\n", e.ID, e.Name, e.Kind, e.Tier))
	b.WriteString(fmt.Sprintf("      %s:%d-%d  complexity=%.2f  accessed=%d\n",
		e.FilePath, e.StartLine, e.EndLine, e.Complexity, e.AccessCount))
}

// FindResponseCLI contains find-by-name results
type FindResponseCLI struct {
	Query        string       `json:"query"`
	Mode         string       `json:"mode"`
	TotalMatches int          `json:"totalMatches"`
	Elements     []ElementCLI `json:"elements"`
}

func formatFindHuman(resp *FindResponseCLI) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Found %d element(s) for %q (mode: %s)\n\n", resp.TotalMatches, resp.Query, resp.Mode))
	for _, e := range resp.Elements {
		writeElementLine(&b, e)
	}
	return b.String(), nil
}

// FileResponseCLI contains the elements of one file
type FileResponseCLI struct {
	FilePath string       `json:"filePath"`
	Mode     string       `json:"mode"`
	Filtered bool         `json:"filtered"`
	Elements []ElementCLI `json:"elements"`
}

func formatFileHuman(resp *FileResponseCLI) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s (mode: %s", resp.FilePath, resp.Mode))
	if resp.Filtered {
		b.WriteString(", complexity-filtered")
	}
	b.WriteString(")\n\n")
	for _, e := range resp.Elements {
		writeElementLine(&b, e)
	}
	return b.String(), nil
}

// RelatedNeighborCLI is one neighbor with its connecting edge
type RelatedNeighborCLI struct {
	Element     ElementCLI `json:"element"`
	Relation    string     `json:"relation"`
	Strength    float64    `json:"strength"`
	LoadCost    float64    `json:"loadCost"`
	Difficulty  string     `json:"difficulty"`
	Recommended bool       `json:"recommended"`
}

// RelatedResponseCLI contains neighbors of an element
type RelatedResponseCLI struct {
	ElementID int64                `json:"elementId"`
	Direction string               `json:"direction"`
	Mode      string               `json:"mode"`
	Neighbors []RelatedNeighborCLI `json:"neighbors"`
}

func formatRelatedHuman(resp *RelatedResponseCLI) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d neighbor(s) of element %d (%s, mode: %s)\n\n",
		len(resp.Neighbors), resp.ElementID, resp.Direction, resp.Mode))
	for _, n := range resp.Neighbors {
		marker := " "
		if n.Recommended {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s %s (strength %.2f, cost %.2f, %s)\n",
			marker, n.Relation, n.Strength, n.LoadCost, n.Difficulty))
		writeElementLine(&b, n.Element)
	}
	if len(resp.Neighbors) > 0 {
		b.WriteString("\n* = recommended low-friction edge\n")
	}
	return b.String(), nil
}

// PathResponseCLI contains one path search result
type PathResponseCLI struct {
	SourceID         int64        `json:"sourceId"`
	TargetID         int64        `json:"targetId"`
	Found            bool         `json:"found"`
	Depth            int          `json:"depth,omitempty"`
	TotalCost        float64      `json:"totalCost,omitempty"`
	StrengthProduct  float64      `json:"strengthProduct,omitempty"`
	AvgComplexity    float64      `json:"avgComplexity,omitempty"`
	EstimatedMinutes float64      `json:"estimatedMinutes,omitempty"`
	Elements         []ElementCLI `json:"elements,omitempty"`
	RelationTypes    []string     `json:"relationTypes,omitempty"`
	Advisories       []string     `json:"advisories,omitempty"`
}

func formatPathHuman(resp *PathResponseCLI) (string, error) {
	var b strings.Builder
	if !resp.Found {
		b.WriteString(fmt.Sprintf("No path from %d to %d within the depth bound\n", resp.SourceID, resp.TargetID))
		return b.String(), nil
	}

	b.WriteString(fmt.Sprintf("Path %d -> %d: %d hop(s), cost %.2f, strength %.2f, ~%.0f min\n\n",
		resp.SourceID, resp.TargetID, resp.Depth, resp.TotalCost, resp.StrengthProduct, resp.EstimatedMinutes))
	for i, e := range resp.Elements {
		if i > 0 && i-1 < len(resp.RelationTypes) {
			b.WriteString(fmt.Sprintf("    | %s\n", resp.RelationTypes[i-1]))
		}
		writeElementLine(&b, e)
	}
	for _, a := range resp.Advisories {
		b.WriteString(fmt.Sprintf("\n! %s", a))
	}
	if len(resp.Advisories) > 0 {
		b.WriteString("\n")
	}
	return b.String(), nil
}

// RecommendStepCLI is one ranked navigation step
type RecommendStepCLI struct {
	Rank          int        `json:"rank"`
	Element       ElementCLI `json:"element"`
	Relation      string     `json:"relation"`
	Relevance     float64    `json:"relevance"`
	Load          float64    `json:"load"`
	LoadTier      string     `json:"loadTier"`
	Effectiveness float64    `json:"effectiveness"`
	Friendly      bool       `json:"friendly"`
}

// RecommendResponseCLI contains a ranked recommendation
type RecommendResponseCLI struct {
	QueryID  string             `json:"queryId"`
	Strategy string             `json:"strategy"`
	Anchor   *ElementCLI        `json:"anchor,omitempty"`
	Steps    []RecommendStepCLI `json:"steps"`
}

func formatRecommendHuman(resp *RecommendResponseCLI) (string, error) {
	var b strings.Builder
	if resp.Anchor == nil {
		b.WriteString("Unknown anchor element, nothing to recommend\n")
		return b.String(), nil
	}

	b.WriteString(fmt.Sprintf("From %s [%d] (strategy: %s)\n\n", resp.Anchor.Name, resp.Anchor.ID, resp.Strategy))
	for _, s := range resp.Steps {
		marker := " "
		if s.Friendly {
			marker = "*"
		}
		b.WriteString(fmt.Sprintf("%s %d. %s via %s  relevance=%.2f load=%.2f (%s) effectiveness=%.2f\n",
			marker, s.Rank, s.Element.Name, s.Relation, s.Relevance, s.Load, s.LoadTier, s.Effectiveness))
		b.WriteString(fmt.Sprintf("       %s:%d\n", s.Element.FilePath, s.Element.StartLine))
	}
	if len(resp.Steps) == 0 {
		b.WriteString("No steps passed the strategy's thresholds\n")
	}
	return b.String(), nil
}

// StatusResponseCLI contains store and cache diagnostics
type StatusResponseCLI struct {
	Version       string `json:"version"`
	DBPath        string `json:"dbPath"`
	SchemaVersion int    `json:"schemaVersion"`
	Elements      int64  `json:"elements"`
	Relationships int64  `json:"relationships"`

	CacheEntries   int    `json:"cacheEntries"`
	CacheHits      uint64 `json:"cacheHits"`
	CacheMisses    uint64 `json:"cacheMisses"`
	CacheEvictions uint64 `json:"cacheEvictions"`
}

func formatStatusHuman(resp *StatusResponseCLI) (string, error) {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("cnav v%s\n", resp.Version))
	b.WriteString(strings.Repeat("=", 40) + "\n")
	b.WriteString(fmt.Sprintf("Database:       %s (schema v%d)\n", resp.DBPath, resp.SchemaVersion))
	b.WriteString(fmt.Sprintf("Elements:       %d\n", resp.Elements))
	b.WriteString(fmt.Sprintf("Relationships:  %d\n", resp.Relationships))
	b.WriteString(fmt.Sprintf("Cache:          %d entries, %d hits / %d misses, %d evictions\n",
		resp.CacheEntries, resp.CacheHits, resp.CacheMisses, resp.CacheEvictions))
	return b.String(), nil
}
