package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodexport/internal/etl"
	"prodexport/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// ── Migrations ─────────────────────────────────────────────

func TestNew_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := storage.New(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = storage.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())
}

// ── Run Logs ───────────────────────────────────────────────

func TestRunStore_CreateAndList(t *testing.T) {
	store := storage.NewRunStore(newTestDB(t))
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := &etl.RunLog{
		StartedAt:   base,
		FinishedAt:  base.Add(time.Minute),
		Status:      etl.RunStatusSuccess,
		SourceType:  "sql",
		FilePath:    "/tmp/prodId_export_20260301100000.txt",
		RecordsRead: 12,
		RowsWritten: 14,
		Staged:      true,
	}
	second := &etl.RunLog{
		StartedAt:  base.Add(time.Hour),
		FinishedAt: base.Add(time.Hour + time.Second),
		Status:     etl.RunStatusError,
		SourceType: "mongo",
		Offset:     500,
		TestMode:   true,
		Error:      "failed to store export file to object storage",
	}
	require.NoError(t, store.CreateRunLog(first))
	require.NoError(t, store.CreateRunLog(second))
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	logs, err := store.ListRunLogs(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	// Newest first.
	assert.Equal(t, second.ID, logs[0].ID)
	assert.Equal(t, etl.RunStatusError, logs[0].Status)
	assert.Equal(t, int64(500), logs[0].Offset)
	assert.True(t, logs[0].TestMode)
	assert.Equal(t, second.Error, logs[0].Error)

	assert.Equal(t, first.ID, logs[1].ID)
	assert.Equal(t, 12, logs[1].RecordsRead)
	assert.Equal(t, 14, logs[1].RowsWritten)
	assert.True(t, logs[1].Staged)
	assert.True(t, logs[1].StartedAt.Equal(base))
}

func TestRunStore_ListLimit(t *testing.T) {
	store := storage.NewRunStore(newTestDB(t))
	start := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.CreateRunLog(&etl.RunLog{
			StartedAt: start.Add(time.Duration(i) * time.Minute),
			Status:    etl.RunStatusSuccess,
		}))
	}

	logs, err := store.ListRunLogs(3)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
