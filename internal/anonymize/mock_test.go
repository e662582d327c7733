package anonymize

import (
	"context"
	"errors"
	"sync"

	"colhash/internal/domain"
)

var errTest = errors.New("test error")

// === Mapping Store Mock ===

type mockRepo struct {
	insertManyFn     func(ctx context.Context, records []domain.HashRecord) error
	lookupByTokensFn func(ctx context.Context, tokens []string) ([]domain.HashRecord, error)
}

func (m *mockRepo) InsertMany(ctx context.Context, records []domain.HashRecord) error {
	if m.insertManyFn != nil {
		return m.insertManyFn(ctx, records)
	}
	panic("unexpected call to mockRepo.InsertMany")
}

func (m *mockRepo) LookupByTokens(ctx context.Context, tokens []string) ([]domain.HashRecord, error) {
	if m.lookupByTokensFn != nil {
		return m.lookupByTokensFn(ctx, tokens)
	}
	panic("unexpected call to mockRepo.LookupByTokens")
}

// === In-memory Mapping Store ===

type memRepo struct {
	mu      sync.Mutex
	records map[string]string
	inserts int
}

func newMemRepo(records ...domain.HashRecord) *memRepo {
	m := &memRepo{records: make(map[string]string)}
	for _, r := range records {
		m.records[r.Token] = r.ColumnName
	}
	return m
}

func (m *memRepo) InsertMany(_ context.Context, records []domain.HashRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		if _, ok := m.records[r.Token]; ok {
			return domain.ErrConflict("token %s already exists", r.Token)
		}
	}
	for _, r := range records {
		m.records[r.Token] = r.ColumnName
	}
	m.inserts++
	return nil
}

func (m *memRepo) LookupByTokens(_ context.Context, tokens []string) ([]domain.HashRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.HashRecord
	for _, t := range tokens {
		if name, ok := m.records[t]; ok {
			out = append(out, domain.HashRecord{Token: t, ColumnName: name})
		}
	}
	return out, nil
}

func (m *memRepo) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// failingReader is a random source that always errors.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errTest }
