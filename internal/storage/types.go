package storage

import (
	naverr "cnav/internal/errors"
)

// ElementKind classifies a code symbol
type ElementKind string

const (
	KindFunction  ElementKind = "function"
	KindMethod    ElementKind = "method"
	KindClass     ElementKind = "class"
	KindStruct    ElementKind = "struct"
	KindInterface ElementKind = "interface"
	KindVariable  ElementKind = "variable"
	KindConstant  ElementKind = "constant"
	KindModule    ElementKind = "module"
)

// ValidKind reports whether k is a known element kind.
// Empty means "any" in filter positions.
func ValidKind(k ElementKind) bool {
	switch k {
	case KindFunction, KindMethod, KindClass, KindStruct, KindInterface,
		KindVariable, KindConstant, KindModule:
		return true
	default:
		return false
	}
}

// ComplexityTier is one of four ordered bins derived from the
// complexity score
type ComplexityTier string

const (
	TierTrivial  ComplexityTier = "trivial"
	TierSimple   ComplexityTier = "simple"
	TierModerate ComplexityTier = "moderate"
	TierComplex  ComplexityTier = "complex"
)

// ComplexityTierOf bins a [0,1] complexity score into its tier.
func ComplexityTierOf(score float64) ComplexityTier {
	switch {
	case score < 0.25:
		return TierTrivial
	case score < 0.5:
		return TierSimple
	case score < 0.75:
		return TierModerate
	default:
		return TierComplex
	}
}

// Element is a code symbol with complexity and load metadata.
// Elements are created by an external indexer (or the seed importer)
// and read-only here apart from access-frequency increments.
type Element struct {
	ID                  int64          `json:"id"`
	FilePath            string         `json:"filePath"`
	Name                string         `json:"name"`
	Kind                ElementKind    `json:"kind"`
	Language            string         `json:"language,omitempty"`
	StartLine           int            `json:"startLine"`
	EndLine             int            `json:"endLine"`
	ComplexityScore     float64        `json:"complexityScore"`
	ComplexityTier      ComplexityTier `json:"complexityTier"`
	CognitiveLoadFactor float64        `json:"cognitiveLoadFactor"`
	AccessCount         int64          `json:"accessCount"`
	Notes               string         `json:"notes,omitempty"`
}

// NewElement builds a validated Element (ID unset until stored).
func NewElement(filePath, name string, kind ElementKind, language string, startLine, endLine int, complexity, loadFactor float64) (*Element, error) {
	if filePath == "" || name == "" {
		return nil, naverr.NewValidation("element requires file path and name")
	}
	if !ValidKind(kind) {
		return nil, naverr.NewValidation("unknown element kind %q", kind)
	}
	if startLine < 0 || endLine < startLine {
		return nil, naverr.NewValidation("element line range [%d, %d] is invalid", startLine, endLine)
	}
	if complexity < 0 || complexity > 1 {
		return nil, naverr.NewValidation("complexity score %.3f outside [0, 1]", complexity)
	}
	if loadFactor < 0 || loadFactor > 1 {
		return nil, naverr.NewValidation("cognitive load factor %.3f outside [0, 1]", loadFactor)
	}

	return &Element{
		FilePath:            filePath,
		Name:                name,
		Kind:                kind,
		Language:            language,
		StartLine:           startLine,
		EndLine:             endLine,
		ComplexityScore:     complexity,
		ComplexityTier:      ComplexityTierOf(complexity),
		CognitiveLoadFactor: loadFactor,
	}, nil
}

// RelationType is the closed set of edge types between elements
type RelationType string

const (
	RelCalls      RelationType = "calls"
	RelImports    RelationType = "imports"
	RelInherits   RelationType = "inherits"
	RelDefines    RelationType = "defines"
	RelUses       RelationType = "uses"
	RelContains   RelationType = "contains"
	RelReferences RelationType = "references"
	RelImplements RelationType = "implements"
	RelOverrides  RelationType = "overrides"
	RelSimilarTo  RelationType = "similar_to"
)

// ValidRelationType reports whether t is a known relationship type.
func ValidRelationType(t RelationType) bool {
	switch t {
	case RelCalls, RelImports, RelInherits, RelDefines, RelUses,
		RelContains, RelReferences, RelImplements, RelOverrides, RelSimilarTo:
		return true
	default:
		return false
	}
}

// TraversalDifficulty tiers how hard an edge is to follow
type TraversalDifficulty string

const (
	DifficultyEasy     TraversalDifficulty = "easy"
	DifficultyModerate TraversalDifficulty = "moderate"
	DifficultyHard     TraversalDifficulty = "hard"
)

// ValidDifficulty reports whether d is a known difficulty tier.
func ValidDifficulty(d TraversalDifficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyModerate, DifficultyHard:
		return true
	default:
		return false
	}
}

// Relationship is a directed, typed edge between two elements.
// (SourceID, TargetID, Type) is not unique in the store; the query
// layer deduplicates on that natural key.
type Relationship struct {
	ID             int64               `json:"id"`
	SourceID       int64               `json:"sourceId"`
	TargetID       int64               `json:"targetId"`
	Type           RelationType        `json:"type"`
	Strength       float64             `json:"strength"`
	Confidence     float64             `json:"confidence"`
	LoadCost       float64             `json:"loadCost"`
	Difficulty     TraversalDifficulty `json:"difficulty"`
	TraversalCount int64               `json:"traversalCount"`
	AvgTraversalMs float64             `json:"avgTraversalMs"`
}

// NewRelationship builds a validated Relationship (ID unset until stored).
func NewRelationship(sourceID, targetID int64, relType RelationType, strength, confidence, loadCost float64, difficulty TraversalDifficulty) (*Relationship, error) {
	if sourceID <= 0 || targetID <= 0 {
		return nil, naverr.NewValidation("relationship endpoints must be positive element ids")
	}
	if !ValidRelationType(relType) {
		return nil, naverr.NewValidation("unknown relationship type %q", relType)
	}
	if strength < 0 || strength > 1 {
		return nil, naverr.NewValidation("strength %.3f outside [0, 1]", strength)
	}
	if confidence < 0 || confidence > 1 {
		return nil, naverr.NewValidation("confidence %.3f outside [0, 1]", confidence)
	}
	if loadCost < 0 || loadCost > 1 {
		return nil, naverr.NewValidation("load cost %.3f outside [0, 1]", loadCost)
	}
	if !ValidDifficulty(difficulty) {
		return nil, naverr.NewValidation("unknown traversal difficulty %q", difficulty)
	}

	return &Relationship{
		SourceID:   sourceID,
		TargetID:   targetID,
		Type:       relType,
		Strength:   strength,
		Confidence: confidence,
		LoadCost:   loadCost,
		Difficulty: difficulty,
	}, nil
}

// Recommended reports whether an edge is a low-friction traversal:
// load cost <= 0.5, difficulty easy or moderate, confidence >= 0.7.
// Derived, never stored.
func (r *Relationship) Recommended() bool {
	return r.LoadCost <= 0.5 &&
		r.Difficulty != DifficultyHard &&
		r.Confidence >= 0.7
}

// Direction selects which edges to follow relative to an anchor element
type Direction string

const (
	DirectionOut  Direction = "out"
	DirectionIn   Direction = "in"
	DirectionBoth Direction = "both"
)

// ValidDirection reports whether d is a known direction.
func ValidDirection(d Direction) bool {
	switch d {
	case DirectionOut, DirectionIn, DirectionBoth:
		return true
	default:
		return false
	}
}

// Related pairs a neighboring element with the edge that reaches it
type Related struct {
	Element      Element      `json:"element"`
	Relationship Relationship `json:"relationship"`
}

// DecisionLink connects an element to an external decision record
type DecisionLink struct {
	ElementID int64   `json:"elementId"`
	ItemType  string  `json:"itemType"`
	ItemID    string  `json:"itemId"`
	Strength  float64 `json:"strength"`
}
