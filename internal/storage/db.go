// Package storage provides the SQLite-backed element/relationship store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"cnav/internal/config"
	naverr "cnav/internal/errors"
	"cnav/internal/logging"
)

// DB wraps the SQLite connection pool with transaction helpers and
// deadline handling. All reads are parameterized; the pool is bounded
// by the storage config.
type DB struct {
	conn         *sql.DB
	logger       *logging.Logger
	dbPath       string
	queryTimeout time.Duration
}

// Open opens or creates the SQLite database at .cnav/cnav.db under
// repoRoot, creating the schema on first use.
func Open(repoRoot string, cfg config.StorageConfig, logger *logging.Logger) (*DB, error) {
	dir := filepath.Join(repoRoot, ".cnav")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .cnav directory: %w", err)
	}

	dbPath := filepath.Join(dir, "cnav.db")
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, naverr.NewStorage("failed to open database", err)
	}

	// Bounded pool; acquisition beyond this blocks until a query's
	// context deadline fires
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeoutMs),
		"PRAGMA cache_size=-64000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, naverr.NewStorage("failed to set pragma", err)
		}
	}

	queryTimeout := time.Duration(cfg.QueryTimeoutMs) * time.Millisecond
	if queryTimeout <= 0 {
		queryTimeout = 3 * time.Second
	}

	db := &DB{
		conn:         conn,
		logger:       logger,
		dbPath:       dbPath,
		queryTimeout: queryTimeout,
	}

	if !dbExists {
		logger.Info("Creating new database", map[string]interface{}{
			"path": dbPath,
		})
		if err := db.initializeSchema(); err != nil {
			conn.Close()
			return nil, naverr.NewStorage("failed to initialize schema", err)
		}
	} else {
		if err := db.runMigrations(); err != nil {
			conn.Close()
			return nil, naverr.NewStorage("failed to run migrations", err)
		}
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the on-disk database path.
func (db *DB) Path() string {
	return db.dbPath
}

// withDeadline derives a context bounded by the configured query
// timeout, so no store call can block indefinitely.
func (db *DB) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.queryTimeout)
}

// wrapErr converts driver errors into the store's error taxonomy.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return naverr.Wrap(naverr.Timeout, op+" exceeded query deadline", err)
	}
	return naverr.NewStorage(op+" failed", err)
}

// WithTx executes fn within a transaction, rolling back on error or panic.
func (db *DB) WithTx(fn func(*sql.Tx) error) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return naverr.NewStorage("failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("failed to rollback transaction", map[string]interface{}{
				"error":          err.Error(),
				"rollback_error": rbErr.Error(),
			})
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return naverr.NewStorage("failed to commit transaction", err)
	}

	return nil
}

// Exec executes a statement without returning rows, bounded by the
// query deadline.
func (db *DB) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, cancel := db.withDeadline(ctx)
	defer cancel()
	return db.conn.ExecContext(ctx, query, args...)
}

// Query executes a query that returns rows. The caller's context is
// used directly; store methods bound it via withDeadline and must
// finish scanning before releasing the deadline.
func (db *DB) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns at most one row. As with
// Query, deadline handling belongs to the calling store method so the
// row is scanned before the deadline context is released.
func (db *DB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
