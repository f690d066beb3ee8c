package storage

import (
	"context"
	"database/sql"
	"strings"

	naverr "cnav/internal/errors"
	"cnav/internal/logging"
)

// Store exposes the element/relationship read and write API over a DB.
type Store struct {
	db     *DB
	logger *logging.Logger
}

// NewStore creates a store over an open database.
func NewStore(db *DB, logger *logging.Logger) *Store {
	return &Store{db: db, logger: logger.With("storage")}
}

// DB returns the underlying database handle.
func (s *Store) DB() *DB {
	return s.db
}

const elementColumns = `id, file_path, element_name, element_kind, language,
	start_line, end_line, complexity_score, cognitive_load_factor, access_count, notes`

// scanElement reads one element row and derives its complexity tier.
func scanElement(row interface{ Scan(...interface{}) error }) (*Element, error) {
	var e Element
	err := row.Scan(
		&e.ID, &e.FilePath, &e.Name, &e.Kind, &e.Language,
		&e.StartLine, &e.EndLine, &e.ComplexityScore, &e.CognitiveLoadFactor,
		&e.AccessCount, &e.Notes,
	)
	if err != nil {
		return nil, err
	}
	e.ComplexityTier = ComplexityTierOf(e.ComplexityScore)
	return &e, nil
}

// GetElement returns the element with the given id, or nil when absent.
func (s *Store) GetElement(ctx context.Context, id int64) (*Element, error) {
	if id <= 0 {
		return nil, nil
	}

	dctx, cancel := s.db.withDeadline(ctx)
	defer cancel()

	row := s.db.QueryRow(dctx, `
		SELECT `+elementColumns+`
		FROM code_elements
		WHERE id = ?
	`, id)

	elem, err := scanElement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get element", err)
	}
	return elem, nil
}

// FindFilter narrows a name search. Empty fields match everything.
type FindFilter struct {
	Name     string
	FilePath string
	Kind     ElementKind
	Limit    int
}

// FindElements returns elements whose name contains filter.Name,
// ordered complexity-ascending then access-frequency-descending so
// simple, familiar symbols surface first. All filters apply in SQL.
func (s *Store) FindElements(ctx context.Context, filter FindFilter) ([]Element, error) {
	query := `
		SELECT ` + elementColumns + `
		FROM code_elements
		WHERE element_name LIKE ? ESCAPE '\'`
	args := []interface{}{"%" + escapeLike(filter.Name) + "%"}

	if filter.FilePath != "" {
		query += " AND file_path = ?"
		args = append(args, filter.FilePath)
	}
	if filter.Kind != "" {
		query += " AND element_kind = ?"
		args = append(args, string(filter.Kind))
	}

	query += `
		ORDER BY complexity_score ASC, access_count DESC, id ASC
		LIMIT ?`
	args = append(args, limitOrDefault(filter.Limit))

	return s.queryElements(ctx, "find elements", query, args...)
}

// ListElementsInFile returns all elements in a file ordered by start
// line. A positive maxComplexity drops anything above it server-side.
func (s *Store) ListElementsInFile(ctx context.Context, filePath string, maxComplexity float64, limit int) ([]Element, error) {
	query := `
		SELECT ` + elementColumns + `
		FROM code_elements
		WHERE file_path = ?`
	args := []interface{}{filePath}

	if maxComplexity > 0 {
		query += " AND complexity_score <= ?"
		args = append(args, maxComplexity)
	}

	query += `
		ORDER BY start_line ASC, id ASC
		LIMIT ?`
	args = append(args, limitOrDefault(limit))

	return s.queryElements(ctx, "list elements in file", query, args...)
}

// queryElements runs an element query and scans all rows before the
// deadline context is released.
func (s *Store) queryElements(ctx context.Context, op, query string, args ...interface{}) ([]Element, error) {
	dctx, cancel := s.db.withDeadline(ctx)
	defer cancel()

	rows, err := s.db.Query(dctx, query, args...)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer rows.Close()

	var elements []Element
	for rows.Next() {
		elem, err := scanElement(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		elements = append(elements, *elem)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}

	return elements, nil
}

// InsertElement stores a new element and assigns its id.
func (s *Store) InsertElement(ctx context.Context, e *Element) error {
	if e == nil {
		return naverr.NewValidation("element is nil")
	}

	res, err := s.db.Exec(ctx, `
		INSERT INTO code_elements
			(file_path, element_name, element_kind, language, start_line, end_line,
			 complexity_score, cognitive_load_factor, access_count, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.FilePath, e.Name, string(e.Kind), e.Language, e.StartLine, e.EndLine,
		e.ComplexityScore, e.CognitiveLoadFactor, e.AccessCount, e.Notes)
	if err != nil {
		return wrapErr("insert element", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return wrapErr("insert element", err)
	}
	e.ID = id
	e.ComplexityTier = ComplexityTierOf(e.ComplexityScore)
	return nil
}

// RecordAccess increments an element's access-frequency counter.
// Best-effort: ordering that embeds the counter may lag briefly.
func (s *Store) RecordAccess(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE code_elements SET access_count = access_count + 1 WHERE id = ?
	`, id)
	if err != nil {
		return wrapErr("record access", err)
	}
	return nil
}

// CountElements returns the total number of stored elements.
func (s *Store) CountElements(ctx context.Context) (int64, error) {
	dctx, cancel := s.db.withDeadline(ctx)
	defer cancel()

	var n int64
	if err := s.db.QueryRow(dctx, "SELECT COUNT(*) FROM code_elements").Scan(&n); err != nil {
		return 0, wrapErr("count elements", err)
	}
	return n, nil
}

// AllElements returns every stored element in id order. Used by export
// and bulk import, never by the query path.
func (s *Store) AllElements(ctx context.Context) ([]Element, error) {
	return s.queryElements(ctx, "all elements", `
		SELECT `+elementColumns+`
		FROM code_elements
		ORDER BY id ASC
	`)
}

// escapeLike escapes LIKE wildcards in user-supplied substrings.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// limitOrDefault guards against unbounded result sets.
func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}
