package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freedlm/fdm/internal/transfer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecord_InsertsNewEntry(t *testing.T) {
	s := openTestStore(t)
	total := int64(2048)
	rec := &transfer.Record{
		ID:              "a",
		URL:             "https://example.com/f.bin",
		FileName:        "f.bin",
		SavePath:        "/tmp/f.bin",
		Status:          transfer.StatusCompleted,
		TotalBytes:      &total,
		DownloadedBytes: 2048,
		UpdatedAt:       1000,
	}
	require.NoError(t, s.Record(rec))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)
	assert.Equal(t, transfer.StatusCompleted, entries[0].Status)
	require.NotNil(t, entries[0].TotalBytes)
	assert.Equal(t, total, *entries[0].TotalBytes)
	assert.Empty(t, entries[0].Error)
}

func TestRecord_UpsertOverwritesPriorStatus(t *testing.T) {
	s := openTestStore(t)
	rec := &transfer.Record{
		ID:              "a",
		URL:             "https://example.com/f.bin",
		FileName:        "f.bin",
		SavePath:        "/tmp/f.bin",
		Status:          transfer.StatusFailed,
		DownloadedBytes: 10,
		Error:           "boom",
		UpdatedAt:       1000,
	}
	require.NoError(t, s.Record(rec))

	rec.Status = transfer.StatusCompleted
	rec.Error = ""
	rec.DownloadedBytes = 100
	rec.UpdatedAt = 2000
	require.NoError(t, s.Record(rec))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, transfer.StatusCompleted, entries[0].Status)
	assert.Equal(t, int64(100), entries[0].DownloadedBytes)
	assert.Empty(t, entries[0].Error)
}

func TestList_OrdersMostRecentFirst(t *testing.T) {
	s := openTestStore(t)
	older := &transfer.Record{ID: "older", URL: "u", FileName: "f", SavePath: "p", Status: transfer.StatusCompleted, UpdatedAt: 1000}
	newer := &transfer.Record{ID: "newer", URL: "u", FileName: "f", SavePath: "p", Status: transfer.StatusCompleted, UpdatedAt: 5000}
	require.NoError(t, s.Record(older))
	require.NoError(t, s.Record(newer))

	entries, err := s.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].ID)
	assert.Equal(t, "older", entries[1].ID)
}

func TestList_EmptyStoreReturnsNoEntries(t *testing.T) {
	s := openTestStore(t)
	entries, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
