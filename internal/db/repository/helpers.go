// Package repository implements domain repository interfaces over the
// mapping store databases.
package repository

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"colhash/internal/domain"
)

// conflictMessages are the driver messages reporting a primary key or unique
// violation. SQLite says "UNIQUE constraint failed"; DuckDB says
// "Duplicate key ... violates primary key constraint".
var conflictMessages = []string{
	"UNIQUE constraint failed",
	"Duplicate key",
	"violates primary key constraint",
}

// mapDBError classifies a driver error for op as a ConflictError or a
// StoreError.
func mapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConflict(err) {
		return domain.ErrConflict("hash record already exists: %v", err)
	}
	return domain.ErrStore(op, err)
}

func isConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return true
		}
	}
	msg := err.Error()
	for _, m := range conflictMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
