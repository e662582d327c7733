package repository

import (
	"context"
	"database/sql"
	"fmt"

	dbstore "colhash/internal/db/dbstore"
	"colhash/internal/domain"
)

// lookupChunkSize bounds the tokens bound into one lookup query, keeping it
// under SQLite's host parameter limit.
const lookupChunkSize = 500

// HashRecordRepo implements domain.HashRecordRepository.
type HashRecordRepo struct {
	writeDB *sql.DB
	write   *dbstore.Queries
	read    *dbstore.Queries
}

// NewHashRecordRepo creates a repository that writes through writeDB and
// reads through readDB. They may be the same pool.
func NewHashRecordRepo(writeDB, readDB *sql.DB) *HashRecordRepo {
	return &HashRecordRepo{
		writeDB: writeDB,
		write:   dbstore.New(writeDB),
		read:    dbstore.New(readDB),
	}
}

// InsertMany stores records in one transaction. Either every record is
// stored or none is.
func (r *HashRecordRepo) InsertMany(ctx context.Context, records []domain.HashRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return mapDBError("begin", err)
	}
	defer tx.Rollback() //nolint:errcheck

	q := r.write.WithTx(tx)
	for _, rec := range records {
		if err := q.InsertHashRecord(ctx, dbstore.InsertHashRecordParams{
			Token:      rec.Token,
			ColumnName: rec.ColumnName,
		}); err != nil {
			return mapDBError("insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapDBError("commit", err)
	}
	return nil
}

// LookupByTokens returns the records for the tokens that exist. Missing
// tokens are skipped.
func (r *HashRecordRepo) LookupByTokens(ctx context.Context, tokens []string) ([]domain.HashRecord, error) {
	if len(tokens) == 0 {
		return []domain.HashRecord{}, nil
	}

	out := make([]domain.HashRecord, 0, len(tokens))
	for start := 0; start < len(tokens); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(tokens))
		rows, err := r.read.GetHashRecordsByTokens(ctx, tokens[start:end])
		if err != nil {
			return nil, mapDBError("lookup", err)
		}
		for _, row := range rows {
			out = append(out, hashRecordFromDB(row))
		}
	}
	return out, nil
}

// Count returns the number of stored records.
func (r *HashRecordRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.read.CountHashRecords(ctx)
	if err != nil {
		return 0, fmt.Errorf("count hash records: %w", mapDBError("count", err))
	}
	return n, nil
}

func hashRecordFromDB(row dbstore.HashRecord) domain.HashRecord {
	return domain.HashRecord{Token: row.Token, ColumnName: row.ColumnName}
}

var _ domain.HashRecordRepository = (*HashRecordRepo)(nil)
