package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS processed_objects (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	kind          TEXT NOT NULL,
	bucket        TEXT NOT NULL,
	object_key    TEXT NOT NULL,
	result        TEXT NOT NULL DEFAULT '',
	has_error     INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	processed_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processed_objects_lookup ON processed_objects (kind, bucket, object_key);`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS processed_objects (
	id            BIGSERIAL PRIMARY KEY,
	kind          TEXT NOT NULL,
	bucket        TEXT NOT NULL,
	object_key    TEXT NOT NULL,
	result        TEXT NOT NULL DEFAULT '',
	has_error     INTEGER NOT NULL DEFAULT 0,
	error_message TEXT NOT NULL DEFAULT '',
	processed_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processed_objects_lookup ON processed_objects (kind, bucket, object_key);`

// SQLLedger stores entries in SQLite or PostgreSQL. Queries use $n
// placeholders, which both drivers accept.
type SQLLedger struct {
	db     *sql.DB
	driver string
}

// OpenSQLLedger opens the database and creates the schema when missing.
func OpenSQLLedger(ctx context.Context, driver, dsn string) (*SQLLedger, error) {
	if driver == "sqlite3" {
		if dir := sqliteDir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create ledger directory: %w", err)
			}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	ledger := NewSQLLedger(db, driver)
	if err := ledger.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

// NewSQLLedger wraps an open database.
func NewSQLLedger(db *sql.DB, driver string) *SQLLedger {
	return &SQLLedger{db: db, driver: driver}
}

func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

// Migrate creates the table and index.
func (l *SQLLedger) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if l.driver == "postgres" {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create ledger schema: %w", err)
		}
	}
	return nil
}

func (l *SQLLedger) Close() error {
	return l.db.Close()
}

func (l *SQLLedger) IsProcessed(ctx context.Context, kind Kind, bucket, key string) (bool, error) {
	query := `SELECT id FROM processed_objects WHERE kind = $1 AND bucket = $2 AND object_key = $3 AND has_error = 0 LIMIT 1`
	var id int64
	err := l.db.QueryRowContext(ctx, query, string(kind), bucket, key).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query failed: %w", err)
	}
	return true, nil
}

func (l *SQLLedger) Record(ctx context.Context, e Entry) error {
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now().UTC()
	}
	hasError := 0
	if e.HasError {
		hasError = 1
	}

	insertSQL := `INSERT INTO processed_objects (kind, bucket, object_key, result, has_error, error_message, processed_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := l.db.ExecContext(ctx, insertSQL, string(e.Kind), e.Bucket, e.Key, e.Result, hasError, e.ErrorMessage, e.ProcessedAt)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

func (l *SQLLedger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	sqlStr := `
		SELECT id, kind, bucket, object_key, result, has_error, error_message, processed_at
		FROM processed_objects
		ORDER BY processed_at DESC, id DESC
		LIMIT $1`
	rows, err := l.db.QueryContext(ctx, sqlStr, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e        Entry
			kind     string
			hasError int
		)
		if err := rows.Scan(&e.ID, &kind, &e.Bucket, &e.Key, &e.Result, &hasError, &e.ErrorMessage, &e.ProcessedAt); err != nil {
			return nil, fmt.Errorf("db scan failed: %w", err)
		}
		e.Kind = Kind(kind)
		e.HasError = hasError != 0
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}
	return entries, nil
}
