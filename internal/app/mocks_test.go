package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yourusername/sstube-go/internal/domain"
)

// runFunc is the per-task behaviour of fakeRunner
type runFunc func(ctx context.Context, task domain.DownloadTask, onProgress domain.ProgressFunc, onLog domain.LogFunc) error

// fakeRunner implements domain.TaskRunner for testing
type fakeRunner struct {
	mu        sync.Mutex
	behaviour map[string]runFunc
	runs      []string
	running   atomic.Int32
	overlap   atomic.Bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{behaviour: make(map[string]runFunc)}
}

func (r *fakeRunner) on(taskID string, fn runFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.behaviour[taskID] = fn
}

func (r *fakeRunner) ResolveTitle(ctx context.Context, task domain.DownloadTask) string {
	if task.Title != "" {
		return task.Title
	}
	return "Title of " + task.SourceURL
}

func (r *fakeRunner) Run(ctx context.Context, task domain.DownloadTask, onProgress domain.ProgressFunc, onLog domain.LogFunc) error {
	if r.running.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.running.Add(-1)

	r.mu.Lock()
	r.runs = append(r.runs, task.ID)
	fn := r.behaviour[task.ID]
	r.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(ctx, task, onProgress, onLog)
}

func (r *fakeRunner) runOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

// mockHistoryRepo implements domain.HistoryRepository for testing
type mockHistoryRepo struct {
	mu      sync.Mutex
	records []*domain.HistoryRecord
}

func (m *mockHistoryRepo) Create(record *domain.HistoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return nil
}

func (m *mockHistoryRepo) FindByTaskID(taskID string) (*domain.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.TaskID == taskID {
			return r, nil
		}
	}
	return nil, nil
}

func (m *mockHistoryRepo) FindRecent(limit int) ([]*domain.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.HistoryRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		out = append(out, m.records[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockHistoryRepo) FindByStatus(status domain.HistoryStatus) ([]*domain.HistoryRecord, error) {
	return nil, nil
}

func (m *mockHistoryRepo) DeleteAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func (m *mockHistoryRepo) GetStats() (*domain.HistoryStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &domain.HistoryStats{Total: int64(len(m.records))}
	for _, r := range m.records {
		switch r.Status {
		case domain.HistoryCompleted:
			stats.Completed++
		case domain.HistoryFailed:
			stats.Failed++
		case domain.HistoryCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

func (m *mockHistoryRepo) statusOf(taskID string) domain.HistoryStatus {
	r, _ := m.FindByTaskID(taskID)
	if r == nil {
		return ""
	}
	return r.Status
}

// fakeEnumerator implements domain.CollectionEnumerator for testing
type fakeEnumerator struct {
	entries []domain.MediaEntry
	err     error
	calls   []domain.CollectionKind
}

func (f *fakeEnumerator) Enumerate(ctx context.Context, collectionURL string, kind domain.CollectionKind, credentialsPath string) ([]domain.MediaEntry, error) {
	f.calls = append(f.calls, kind)
	return f.entries, f.err
}
