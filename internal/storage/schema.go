package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}

		if err := createElementsTable(tx); err != nil {
			return err
		}
		if err := createRelationshipsTable(tx); err != nil {
			return err
		}
		if err := createDecisionLinksTable(tx); err != nil {
			return err
		}

		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}

	db.logger.Info("Running database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Migrations run sequentially as the schema evolves; none yet

	return nil
}

// SchemaVersion reports the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	return db.getSchemaVersion()
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(context.Background(), `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow(context.Background(), "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createElementsTable creates the code_elements table
func createElementsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS code_elements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_path TEXT NOT NULL,
			element_name TEXT NOT NULL,
			element_kind TEXT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			complexity_score REAL NOT NULL CHECK(complexity_score >= 0.0 AND complexity_score <= 1.0),
			cognitive_load_factor REAL NOT NULL CHECK(cognitive_load_factor >= 0.0 AND cognitive_load_factor <= 1.0),
			access_count INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',

			CHECK(start_line <= end_line)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create code_elements table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_code_elements_file_path ON code_elements(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_code_elements_element_name ON code_elements(element_name)",
		"CREATE INDEX IF NOT EXISTS idx_code_elements_element_kind ON code_elements(element_kind)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// createRelationshipsTable creates the code_relationships table.
// (source, target, type) is deliberately not unique; the query layer
// deduplicates on that natural key.
func createRelationshipsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS code_relationships (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_element_id INTEGER NOT NULL,
			target_element_id INTEGER NOT NULL,
			relationship_type TEXT NOT NULL,
			strength REAL NOT NULL CHECK(strength >= 0.0 AND strength <= 1.0),
			confidence REAL NOT NULL CHECK(confidence >= 0.0 AND confidence <= 1.0),
			load_cost REAL NOT NULL CHECK(load_cost >= 0.0 AND load_cost <= 1.0),
			difficulty TEXT NOT NULL CHECK(difficulty IN ('easy', 'moderate', 'hard')),
			traversal_count INTEGER NOT NULL DEFAULT 0,
			avg_traversal_ms REAL NOT NULL DEFAULT 0,

			FOREIGN KEY (source_element_id) REFERENCES code_elements(id) ON DELETE CASCADE,
			FOREIGN KEY (target_element_id) REFERENCES code_elements(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create code_relationships table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_code_relationships_source ON code_relationships(source_element_id)",
		"CREATE INDEX IF NOT EXISTS idx_code_relationships_target ON code_relationships(target_element_id)",
		"CREATE INDEX IF NOT EXISTS idx_code_relationships_type ON code_relationships(relationship_type)",
	}

	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// createDecisionLinksTable creates the decision_links table backing the
// decision-link collaborator lookup
func createDecisionLinksTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS decision_links (
			element_id INTEGER NOT NULL,
			item_type TEXT NOT NULL,
			item_id TEXT NOT NULL,
			strength REAL NOT NULL CHECK(strength >= 0.0 AND strength <= 1.0),

			PRIMARY KEY (element_id, item_type, item_id),
			FOREIGN KEY (element_id) REFERENCES code_elements(id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create decision_links table: %w", err)
	}

	if _, err := tx.Exec(
		"CREATE INDEX IF NOT EXISTS idx_decision_links_element ON decision_links(element_id)",
	); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}
