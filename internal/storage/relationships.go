package storage

import (
	"context"
	"strings"

	naverr "cnav/internal/errors"
)

const relationshipColumns = `r.id, r.source_element_id, r.target_element_id, r.relationship_type,
	r.strength, r.confidence, r.load_cost, r.difficulty, r.traversal_count, r.avg_traversal_ms`

// GetRelated returns neighbors of an element joined with the edge that
// reaches them, ordered strength-descending, complexity-ascending,
// traversal-frequency-descending. Direction selects which side of the
// edge the anchor sits on; "both" unions the two. Unknown element ids
// yield an empty result.
func (s *Store) GetRelated(ctx context.Context, elementID int64, direction Direction, types []RelationType, limit int) ([]Related, error) {
	if elementID <= 0 {
		return nil, nil
	}

	var parts []string
	var args []interface{}

	typeClause, typeArgs := relationTypeClause(types)

	if direction == DirectionOut || direction == DirectionBoth {
		parts = append(parts, `
			SELECT `+relatedColumns+`
			FROM code_relationships r
			JOIN code_elements e ON e.id = r.target_element_id
			WHERE r.source_element_id = ?`+typeClause)
		args = append(args, elementID)
		args = append(args, typeArgs...)
	}
	if direction == DirectionIn || direction == DirectionBoth {
		parts = append(parts, `
			SELECT `+relatedColumns+`
			FROM code_relationships r
			JOIN code_elements e ON e.id = r.source_element_id
			WHERE r.target_element_id = ?`+typeClause)
		args = append(args, elementID)
		args = append(args, typeArgs...)
	}
	if len(parts) == 0 {
		return nil, naverr.NewValidation("unknown direction %q", direction)
	}

	query := strings.Join(parts, "\n\t\t\tUNION ALL\n") + `
		ORDER BY strength DESC, complexity_score ASC, traversal_count DESC, rel_id ASC
		LIMIT ?`
	args = append(args, limitOrDefault(limit))

	dctx, cancel := s.db.withDeadline(ctx)
	defer cancel()

	rows, err := s.db.Query(dctx, query, args...)
	if err != nil {
		return nil, wrapErr("get related", err)
	}
	defer rows.Close()

	var related []Related
	for rows.Next() {
		var rel Relationship
		var e Element
		err := rows.Scan(
			&rel.ID, &rel.SourceID, &rel.TargetID, &rel.Type,
			&rel.Strength, &rel.Confidence, &rel.LoadCost, &rel.Difficulty,
			&rel.TraversalCount, &rel.AvgTraversalMs,
			&e.ID, &e.FilePath, &e.Name, &e.Kind, &e.Language,
			&e.StartLine, &e.EndLine, &e.ComplexityScore, &e.CognitiveLoadFactor,
			&e.AccessCount, &e.Notes,
		)
		if err != nil {
			return nil, wrapErr("get related", err)
		}
		e.ComplexityTier = ComplexityTierOf(e.ComplexityScore)
		related = append(related, Related{Element: e, Relationship: rel})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get related", err)
	}

	return related, nil
}

// relatedColumns aliases the joined columns so the UNION ALL ORDER BY
// can reference them unambiguously.
const relatedColumns = `r.id AS rel_id, r.source_element_id, r.target_element_id, r.relationship_type,
	r.strength AS strength, r.confidence, r.load_cost, r.difficulty,
	r.traversal_count AS traversal_count, r.avg_traversal_ms,
	e.id AS elem_id, e.file_path, e.element_name, e.element_kind, e.language,
	e.start_line, e.end_line, e.complexity_score AS complexity_score,
	e.cognitive_load_factor, e.access_count, e.notes`

// relationTypeClause builds an IN clause for a type filter.
func relationTypeClause(types []RelationType) (string, []interface{}) {
	if len(types) == 0 {
		return "", nil
	}
	placeholders := make([]string, len(types))
	args := make([]interface{}, len(types))
	for i, t := range types {
		placeholders[i] = "?"
		args[i] = string(t)
	}
	return " AND r.relationship_type IN (" + strings.Join(placeholders, ", ") + ")", args
}

// OutgoingEdges returns the raw outgoing edges of an element for path
// expansion. A maxCost in (0, 1] filters expensive edges server-side;
// zero or negative disables the filter.
func (s *Store) OutgoingEdges(ctx context.Context, elementID int64, maxCost float64) ([]Relationship, error) {
	if elementID <= 0 {
		return nil, nil
	}

	query := `
		SELECT ` + relationshipColumns + `
		FROM code_relationships r
		WHERE r.source_element_id = ?`
	args := []interface{}{elementID}

	if maxCost > 0 {
		query += " AND r.load_cost <= ?"
		args = append(args, maxCost)
	}

	query += " ORDER BY r.strength DESC, r.id ASC"

	dctx, cancel := s.db.withDeadline(ctx)
	defer cancel()

	rows, err := s.db.Query(dctx, query, args...)
	if err != nil {
		return nil, wrapErr("outgoing edges", err)
	}
	defer rows.Close()

	var edges []Relationship
	for rows.Next() {
		var rel Relationship
		err := rows.Scan(
			&rel.ID, &rel.SourceID, &rel.TargetID, &rel.Type,
			&rel.Strength, &rel.Confidence, &rel.LoadCost, &rel.Difficulty,
			&rel.TraversalCount, &rel.AvgTraversalMs,
		)
		if err != nil {
			return nil, wrapErr("outgoing edges", err)
		}
		edges = append(edges, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("outgoing edges", err)
	}

	return edges, nil
}

// AllRelationships returns every stored relationship in id order. Used
// by export, never by the query path.
func (s *Store) AllRelationships(ctx context.Context) ([]Relationship, error) {
	dctx, cancel := s.db.withDeadline(ctx)
	defer cancel()

	rows, err := s.db.Query(dctx, `
		SELECT `+relationshipColumns+`
		FROM code_relationships r
		ORDER BY r.id ASC
	`)
	if err != nil {
		return nil, wrapErr("all relationships", err)
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var rel Relationship
		err := rows.Scan(
			&rel.ID, &rel.SourceID, &rel.TargetID, &rel.Type,
			&rel.Strength, &rel.Confidence, &rel.LoadCost, &rel.Difficulty,
			&rel.TraversalCount, &rel.AvgTraversalMs,
		)
		if err != nil {
			return nil, wrapErr("all relationships", err)
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("all relationships", err)
	}

	return rels, nil
}

// InsertRelationship stores a new relationship and assigns its id.
func (s *Store) InsertRelationship(ctx context.Context, r *Relationship) error {
	if r == nil {
		return naverr.NewValidation("relationship is nil")
	}

	res, err := s.db.Exec(ctx, `
		INSERT INTO code_relationships
			(source_element_id, target_element_id, relationship_type,
			 strength, confidence, load_cost, difficulty, traversal_count, avg_traversal_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.SourceID, r.TargetID, string(r.Type),
		r.Strength, r.Confidence, r.LoadCost, string(r.Difficulty),
		r.TraversalCount, r.AvgTraversalMs)
	if err != nil {
		return wrapErr("insert relationship", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return wrapErr("insert relationship", err)
	}
	r.ID = id
	return nil
}

// RecordTraversal updates an edge's traversal counter and running
// average duration. Best-effort, like access counts.
func (s *Store) RecordTraversal(ctx context.Context, relationshipID int64, durationMs float64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE code_relationships
		SET avg_traversal_ms =
				(avg_traversal_ms * traversal_count + ?) / (traversal_count + 1),
			traversal_count = traversal_count + 1
		WHERE id = ?
	`, durationMs, relationshipID)
	if err != nil {
		return wrapErr("record traversal", err)
	}
	return nil
}

// CountRelationships returns the total number of stored relationships.
func (s *Store) CountRelationships(ctx context.Context) (int64, error) {
	dctx, cancel := s.db.withDeadline(ctx)
	defer cancel()

	var n int64
	if err := s.db.QueryRow(dctx, "SELECT COUNT(*) FROM code_relationships").Scan(&n); err != nil {
		return 0, wrapErr("count relationships", err)
	}
	return n, nil
}

// DecisionLinks returns the decision records linked to an element.
func (s *Store) DecisionLinks(ctx context.Context, elementID int64) ([]DecisionLink, error) {
	if elementID <= 0 {
		return nil, nil
	}

	dctx, cancel := s.db.withDeadline(ctx)
	defer cancel()

	rows, err := s.db.Query(dctx, `
		SELECT element_id, item_type, item_id, strength
		FROM decision_links
		WHERE element_id = ?
		ORDER BY strength DESC, item_id ASC
	`, elementID)
	if err != nil {
		return nil, wrapErr("decision links", err)
	}
	defer rows.Close()

	var links []DecisionLink
	for rows.Next() {
		var l DecisionLink
		if err := rows.Scan(&l.ElementID, &l.ItemType, &l.ItemID, &l.Strength); err != nil {
			return nil, wrapErr("decision links", err)
		}
		links = append(links, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("decision links", err)
	}

	return links, nil
}

// InsertDecisionLink stores a decision link, replacing an existing one
// for the same (element, item) pair.
func (s *Store) InsertDecisionLink(ctx context.Context, l DecisionLink) error {
	_, err := s.db.Exec(ctx, `
		INSERT OR REPLACE INTO decision_links (element_id, item_type, item_id, strength)
		VALUES (?, ?, ?, ?)
	`, l.ElementID, l.ItemType, l.ItemID, l.Strength)
	if err != nil {
		return wrapErr("insert decision link", err)
	}
	return nil
}
