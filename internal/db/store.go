package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Driver names a supported storage engine.
type Driver string

// Supported drivers.
const (
	DriverSQLite Driver = "sqlite"
	DriverDuckDB Driver = "duckdb"
)

// ParseDriver resolves a driver name. An empty name selects DriverSQLite.
func ParseDriver(name string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(name))) {
	case "", DriverSQLite:
		return DriverSQLite, nil
	case DriverDuckDB:
		return DriverDuckDB, nil
	default:
		return "", fmt.Errorf("unsupported store driver %q (want %s or %s)", name, DriverSQLite, DriverDuckDB)
	}
}

// Store is an open mapping store. Writes go through WriteDB and lookups
// through ReadDB; for DuckDB both are the same pool.
type Store struct {
	Driver  Driver
	WriteDB *sql.DB
	ReadDB  *sql.DB
}

// Open opens the mapping store at path and brings its schema up to date.
func Open(ctx context.Context, driver Driver, path string, readPool int) (*Store, error) {
	switch driver {
	case DriverSQLite:
		writeDB, readDB, err := OpenSQLitePair(path, readPool)
		if err != nil {
			return nil, err
		}
		if _, err := RunMigrations(ctx, writeDB); err != nil {
			_ = readDB.Close()
			_ = writeDB.Close()
			return nil, fmt.Errorf("migrate %s: %w", path, err)
		}
		return &Store{Driver: driver, WriteDB: writeDB, ReadDB: readDB}, nil

	case DriverDuckDB:
		db, err := OpenDuckDB(ctx, path)
		if err != nil {
			return nil, err
		}
		return &Store{Driver: driver, WriteDB: db, ReadDB: db}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// Checkpoint folds the write-ahead log into the main database file.
func (s *Store) Checkpoint(ctx context.Context) error {
	stmt := "PRAGMA wal_checkpoint(TRUNCATE)"
	if s.Driver == DriverDuckDB {
		stmt = "CHECKPOINT"
	}
	if _, err := s.WriteDB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("checkpoint %s: %w", s.Driver, err)
	}
	return nil
}

// Ping checks that the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ReadDB.PingContext(ctx)
}

// Close closes every pool of the store.
func (s *Store) Close() error {
	if s.ReadDB == s.WriteDB {
		return s.WriteDB.Close()
	}
	return errors.Join(s.ReadDB.Close(), s.WriteDB.Close())
}
