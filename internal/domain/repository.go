package domain

import "context"

// HashRecordRepository is the mapping store contract.
//
// InsertMany is a no-op for an empty slice and writes the batch atomically.
// A token that already exists is reported as a *ConflictError; any other
// failure as a *StoreError.
//
// LookupByTokens returns only the records whose token is present. Absent
// tokens are not an error, and an empty input returns an empty result
// without touching the store.
type HashRecordRepository interface {
	InsertMany(ctx context.Context, records []HashRecord) error
	LookupByTokens(ctx context.Context, tokens []string) ([]HashRecord, error)
}
