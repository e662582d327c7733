package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
)

// duckDBSchema mirrors the SQLite migrations. DuckDB has no goose dialect,
// so the table is created when the store is opened.
const duckDBSchema = `CREATE TABLE IF NOT EXISTS hash_records (
    token       VARCHAR PRIMARY KEY,
    column_name VARCHAR NOT NULL
)`

// OpenDuckDB opens a DuckDB mapping store at path and creates its schema.
// An empty path opens an in-memory database.
func OpenDuckDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	if _, err := db.ExecContext(ctx, duckDBSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create duckdb schema: %w", err)
	}
	return db, nil
}
