package app

import (
	"sync"

	"github.com/yourusername/sstube-go/internal/domain"
)

// QueueSnapshot is a point-in-time copy of the queue state
type QueueSnapshot struct {
	Pending []domain.DownloadTask `json:"pending"`
	Active  *domain.DownloadTask  `json:"active"`
}

// TaskQueue is a FIFO of pending tasks plus the marker of the one active task.
// TryDequeueIfIdle is the only way a task becomes active, so at most one task
// is ever active.
type TaskQueue struct {
	mu      sync.Mutex
	pending []domain.DownloadTask
	active  *domain.DownloadTask
	ready   chan struct{}
}

// NewTaskQueue creates an empty queue
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{ready: make(chan struct{}, 1)}
}

// Enqueue appends a task to the tail. It never blocks.
func (q *TaskQueue) Enqueue(task domain.DownloadTask) {
	q.mu.Lock()
	q.pending = append(q.pending, task)
	q.mu.Unlock()
	q.signal()
}

// EnqueueAll appends tasks in order as one batch
func (q *TaskQueue) EnqueueAll(tasks []domain.DownloadTask) {
	if len(tasks) == 0 {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, tasks...)
	q.mu.Unlock()
	q.signal()
}

// TryDequeueIfIdle pops the head and marks it active, but only when no task is
// active. Otherwise the queue is left untouched.
func (q *TaskQueue) TryDequeueIfIdle() (domain.DownloadTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active != nil || len(q.pending) == 0 {
		return domain.DownloadTask{}, false
	}

	task := q.pending[0]
	q.pending[0] = domain.DownloadTask{}
	q.pending = q.pending[1:]
	q.active = &task
	return task, true
}

// MarkIdle clears the active marker. Call it exactly once per dequeued task.
func (q *TaskQueue) MarkIdle() {
	q.mu.Lock()
	q.active = nil
	hasPending := len(q.pending) > 0
	q.mu.Unlock()

	if hasPending {
		q.signal()
	}
}

// Remove deletes a pending task by ID
func (q *TaskQueue) Remove(taskID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, task := range q.pending {
		if task.ID == taskID {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return true
		}
	}
	return false
}

// ActiveID returns the ID of the running task, or "" when idle
func (q *TaskQueue) ActiveID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.active == nil {
		return ""
	}
	return q.active.ID
}

// Snapshot returns copies of the pending tasks and the active task
func (q *TaskQueue) Snapshot() QueueSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	snapshot := QueueSnapshot{Pending: make([]domain.DownloadTask, len(q.pending))}
	copy(snapshot.Pending, q.pending)
	if q.active != nil {
		active := *q.active
		snapshot.Active = &active
	}
	return snapshot
}

// PendingCount returns the number of waiting tasks
func (q *TaskQueue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Ready is signalled when a task may have become dequeueable
func (q *TaskQueue) Ready() <-chan struct{} {
	return q.ready
}

func (q *TaskQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
