package infrastructure

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sstube-go/internal/domain"
)

func setupTestRepo(t *testing.T) (*SQLiteHistoryRepository, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "repo-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "nested", "history.db")
	repo, err := NewSQLiteHistoryRepository(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func newHistoryRecord(t *testing.T, url string, runErr error, finished time.Time) *domain.HistoryRecord {
	t.Helper()
	task, err := domain.NewDownloadTask(url, "", domain.TaskOptions{DestinationDir: "/d"})
	require.NoError(t, err)
	record := domain.NewHistoryRecord(task, "Title", finished.Add(-time.Minute), runErr)
	record.FinishedAt = finished
	return record
}

func TestHistory_CreateAndFindByTaskID(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	record := newHistoryRecord(t, "https://www.youtube.com/watch?v=a", nil, time.Now())
	require.NoError(t, repo.Create(record))
	assert.NotZero(t, record.ID)

	found, err := repo.FindByTaskID(record.TaskID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.HistoryCompleted, found.Status)
	assert.Equal(t, "https://www.youtube.com/watch?v=a", found.URL)
}

func TestHistory_FindByTaskIDReturnsNilWhenMissing(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	found, err := repo.FindByTaskID("does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestHistory_FindRecentNewestFirst(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	base := time.Now()
	older := newHistoryRecord(t, "https://www.youtube.com/watch?v=old", nil, base.Add(-time.Hour))
	newer := newHistoryRecord(t, "https://www.youtube.com/watch?v=new", nil, base)
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(newer))

	records, err := repo.FindRecent(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, newer.TaskID, records[0].TaskID)

	limited, err := repo.FindRecent(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestHistory_StatsAndStatusFilter(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	now := time.Now()
	require.NoError(t, repo.Create(newHistoryRecord(t, "https://www.youtube.com/watch?v=1", nil, now)))
	require.NoError(t, repo.Create(newHistoryRecord(t, "https://www.youtube.com/watch?v=2", errors.New("boom"), now)))
	require.NoError(t, repo.Create(newHistoryRecord(t, "https://www.youtube.com/watch?v=3", &domain.CancellationError{TaskID: "x"}, now)))
	require.NoError(t, repo.Create(newHistoryRecord(t, "https://www.youtube.com/watch?v=4", nil, now)))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(2), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Cancelled)

	failed, err := repo.FindByStatus(domain.HistoryFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, domain.KindDownload, failed[0].ErrorKind)
}

func TestHistory_DeleteAll(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	require.NoError(t, repo.Create(newHistoryRecord(t, "https://www.youtube.com/watch?v=1", nil, time.Now())))
	require.NoError(t, repo.DeleteAll())

	records, err := repo.FindRecent(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
