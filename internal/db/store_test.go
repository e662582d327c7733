package db

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDriver(t *testing.T) {
	d, err := ParseDriver("")
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, d)

	d, err = ParseDriver(" DuckDB ")
	require.NoError(t, err)
	assert.Equal(t, DriverDuckDB, d)

	_, err = ParseDriver("postgres")
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	for _, driver := range []Driver{DriverSQLite, DriverDuckDB} {
		t.Run(string(driver), func(t *testing.T) {
			store := OpenTestStore(t, driver)
			ctx := context.Background()

			require.NoError(t, store.Ping(ctx))

			_, err := store.WriteDB.ExecContext(ctx, "INSERT INTO hash_records (token, column_name) VALUES ('t1', 'id')")
			require.NoError(t, err)

			var count int
			require.NoError(t, store.ReadDB.QueryRowContext(ctx, "SELECT count(*) FROM hash_records").Scan(&count))
			assert.Equal(t, 1, count)

			require.NoError(t, store.Checkpoint(ctx))
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Driver("oracle"), "x", 0)
	require.Error(t, err)
}

type stubCounter struct {
	n   int64
	err error
}

func (s stubCounter) Count(context.Context) (int64, error) { return s.n, s.err }

func TestMaintenance_RunOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	store := OpenTestStore(t, DriverSQLite)

	m, err := NewMaintenance(store, stubCounter{n: 42}, "@every 1h", logger)
	require.NoError(t, err)

	require.NoError(t, m.RunOnce(context.Background()))
	assert.Contains(t, buf.String(), "records=42")
}

func TestMaintenance_CountError(t *testing.T) {
	store := OpenTestStore(t, DriverSQLite)
	m, err := NewMaintenance(store, stubCounter{err: errors.New("boom")}, "off", slog.Default())
	require.NoError(t, err)

	err = m.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMaintenance_Schedule(t *testing.T) {
	store := OpenTestStore(t, DriverSQLite)

	_, err := NewMaintenance(store, stubCounter{}, "not a schedule", slog.Default())
	require.Error(t, err)

	for _, schedule := range []string{"", "off", "OFF"} {
		m, err := NewMaintenance(store, stubCounter{}, schedule, slog.Default())
		require.NoError(t, err)
		assert.Nil(t, m.cron, "schedule %q should disable maintenance", schedule)
		m.Start()
		m.Stop(context.Background())
	}

	m, err := NewMaintenance(store, stubCounter{}, "@every 1h", slog.Default())
	require.NoError(t, err)
	m.Start()
	m.Stop(context.Background())
}
