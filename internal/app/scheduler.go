package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/sstube-go/internal/domain"
	"github.com/yourusername/sstube-go/internal/metrics"
	"github.com/yourusername/sstube-go/pkg/logger"
)

// QueueScheduler drains the TaskQueue with a single worker goroutine
type QueueScheduler struct {
	queue       *TaskQueue
	runner      domain.TaskRunner
	publisher   domain.EventPublisher
	history     domain.HistoryRepository
	config      *domain.QueueConfig
	multiLogger *logger.MultiLogger
	logger      *zap.Logger

	mu       sync.RWMutex
	running  bool
	cancel   context.CancelFunc
	stopChan chan struct{}
	exitChan chan struct{}
	workerWg sync.WaitGroup

	// activeMu guards the dequeue together with activeID so that Cancel never
	// misses a task that is between the queue and the runner
	activeMu     sync.Mutex
	activeID     string
	activeCancel context.CancelFunc
}

// NewQueueScheduler creates a scheduler. history and multiLogger may be nil.
func NewQueueScheduler(
	queue *TaskQueue,
	runner domain.TaskRunner,
	publisher domain.EventPublisher,
	history domain.HistoryRepository,
	config *domain.QueueConfig,
	multiLogger *logger.MultiLogger,
	log *zap.Logger,
) *QueueScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueueScheduler{
		queue:       queue,
		runner:      runner,
		publisher:   publisher,
		history:     history,
		config:      config,
		multiLogger: multiLogger,
		logger:      log,
		exitChan:    make(chan struct{}),
	}
}

// Start starts the worker
func (s *QueueScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.stopChan = make(chan struct{})
	s.exitChan = make(chan struct{})

	s.logQueueEvent("queue_started")

	s.workerWg.Add(1)
	go s.processQueue(workerCtx, s.stopChan, s.exitChan)

	return nil
}

// Stop stops the worker, cancelling the active download if there is one
func (s *QueueScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler not running")
	}
	s.running = false
	close(s.stopChan)
	s.cancel()
	s.mu.Unlock()

	s.workerWg.Wait()
	s.logQueueEvent("queue_stopped")
	return nil
}

// IsRunning returns whether the worker is running
func (s *QueueScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// WaitForExit is closed when the worker exits, including on auto-exit
func (s *QueueScheduler) WaitForExit() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exitChan
}

// Enqueue adds a task to the tail of the queue
func (s *QueueScheduler) Enqueue(task domain.DownloadTask) {
	s.EnqueueAll([]domain.DownloadTask{task})
}

// EnqueueAll adds tasks in order
func (s *QueueScheduler) EnqueueAll(tasks []domain.DownloadTask) {
	if len(tasks) == 0 {
		return
	}
	s.queue.EnqueueAll(tasks)

	pending := s.queue.PendingCount()
	metrics.TasksQueuedTotal.Add(float64(len(tasks)))
	metrics.QueuePending.Set(float64(pending))

	for _, task := range tasks {
		s.logQueueEvent("task_queued",
			zap.String("id", task.ID),
			zap.String("url", task.SourceURL),
			zap.String("mode", task.Mode.String()))
		s.publish(domain.Event{
			Type:    domain.EventTaskQueued,
			TaskID:  task.ID,
			URL:     task.SourceURL,
			Title:   task.Title,
			Pending: pending,
		})
	}
}

// Cancel terminates the active task or silently removes a pending one
func (s *QueueScheduler) Cancel(taskID string) error {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	if s.activeID == taskID && s.activeCancel != nil {
		s.logQueueEvent("task_cancel_requested", zap.String("id", taskID))
		s.activeCancel()
		return nil
	}

	if s.queue.Remove(taskID) {
		metrics.QueuePending.Set(float64(s.queue.PendingCount()))
		s.logQueueEvent("task_removed", zap.String("id", taskID))
		return nil
	}

	return domain.ErrTaskNotFound
}

// Snapshot returns the current queue state
func (s *QueueScheduler) Snapshot() QueueSnapshot {
	return s.queue.Snapshot()
}

// processQueue is the worker loop
func (s *QueueScheduler) processQueue(ctx context.Context, stopChan, exitChan chan struct{}) {
	defer s.workerWg.Done()
	defer close(exitChan)

	ticker := time.NewTicker(s.checkInterval())
	defer ticker.Stop()

	emptyStartTime := time.Now()
	idleAnnounced := true

	for {
		if task, taskCtx, ok := s.dequeue(ctx); ok {
			emptyStartTime = time.Time{}
			idleAnnounced = false

			s.runTask(taskCtx, task)

			// Yield before the next task
			select {
			case <-ctx.Done():
				s.logQueueEvent("queue_processor_stopped", zap.String("reason", "context_cancelled"))
				return
			case <-stopChan:
				s.logQueueEvent("queue_processor_stopped", zap.String("reason", "stop_signal"))
				return
			case <-time.After(s.config.TaskGap):
			}
			continue
		}

		if !idleAnnounced {
			idleAnnounced = true
			emptyStartTime = time.Now()
			s.logQueueEvent("queue_empty")
			s.publish(domain.Event{Type: domain.EventQueueIdle})
		}

		select {
		case <-ctx.Done():
			s.logQueueEvent("queue_processor_stopped", zap.String("reason", "context_cancelled"))
			return
		case <-stopChan:
			s.logQueueEvent("queue_processor_stopped", zap.String("reason", "stop_signal"))
			return
		case <-s.queue.Ready():
		case <-ticker.C:
			if s.config.AutoExitOnEmpty && s.queue.PendingCount() == 0 &&
				!emptyStartTime.IsZero() && time.Since(emptyStartTime) > s.config.EmptyWaitTime {
				s.logQueueEvent("queue_auto_exit", zap.String("reason", "empty_timeout"))
				s.mu.Lock()
				s.running = false
				s.cancel()
				s.mu.Unlock()
				return
			}
		}
	}
}

// dequeue takes the next task and registers it as active in one step
func (s *QueueScheduler) dequeue(ctx context.Context) (domain.DownloadTask, context.Context, bool) {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	task, ok := s.queue.TryDequeueIfIdle()
	if !ok {
		return domain.DownloadTask{}, nil, false
	}

	taskCtx, cancel := context.WithCancel(ctx)
	s.activeID = task.ID
	s.activeCancel = cancel
	return task, taskCtx, true
}

func (s *QueueScheduler) clearActive() {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	if s.activeCancel != nil {
		s.activeCancel()
	}
	s.activeID = ""
	s.activeCancel = nil
}

// runTask supervises one task and publishes exactly one terminal event for it
func (s *QueueScheduler) runTask(ctx context.Context, task domain.DownloadTask) {
	defer s.queue.MarkIdle()
	defer s.clearActive()

	metrics.QueueActive.Set(1)
	defer metrics.QueueActive.Set(0)
	metrics.QueuePending.Set(float64(s.queue.PendingCount()))

	startedAt := time.Now()
	task.Title = s.runner.ResolveTitle(ctx, task)

	s.logQueueEvent("task_started",
		zap.String("id", task.ID),
		zap.String("url", task.SourceURL),
		zap.String("title", task.Title))
	s.publish(domain.Event{
		Type:    domain.EventTaskStarted,
		TaskID:  task.ID,
		URL:     task.SourceURL,
		Title:   task.Title,
		Pending: s.queue.PendingCount(),
	})

	var err error
	if ctx.Err() != nil {
		err = &domain.CancellationError{TaskID: task.ID}
	} else {
		err = s.runner.Run(ctx, task,
			func(percent int) {
				s.publish(domain.Event{Type: domain.EventProgress, TaskID: task.ID, Percent: percent})
			},
			func(line string) {
				s.publish(domain.Event{Type: domain.EventLog, TaskID: task.ID, Line: line})
			})
		// A kill on request can surface as any failure from the runner
		if err != nil && ctx.Err() != nil && !errors.Is(err, &domain.CancellationError{}) {
			err = &domain.CancellationError{TaskID: task.ID}
		}
	}

	metrics.TaskDurationSeconds.Observe(time.Since(startedAt).Seconds())
	s.finishTask(task, startedAt, err)
}

// finishTask publishes the terminal event and records history and metrics
func (s *QueueScheduler) finishTask(task domain.DownloadTask, startedAt time.Time, err error) {
	event := domain.Event{
		TaskID:  task.ID,
		URL:     task.SourceURL,
		Title:   task.Title,
		Pending: s.queue.PendingCount(),
	}

	switch {
	case err == nil:
		event.Type = domain.EventTaskSucceeded
		metrics.TasksTotal.WithLabelValues(string(domain.HistoryCompleted)).Inc()
		s.logQueueEvent("task_succeeded",
			zap.String("id", task.ID),
			zap.Duration("duration", time.Since(startedAt)))

	case errors.Is(err, &domain.CancellationError{}):
		event.Type = domain.EventTaskCancelled
		event.ErrorKind = domain.KindCancelled
		metrics.TasksTotal.WithLabelValues(string(domain.HistoryCancelled)).Inc()
		s.logQueueEvent("task_cancelled", zap.String("id", task.ID))

	default:
		event.Type = domain.EventTaskFailed
		event.ErrorKind = domain.KindOf(err)
		event.Error = err.Error()
		event.Output = err.Error()

		var dlErr *domain.DownloadError
		if errors.As(err, &dlErr) {
			event.Failure = dlErr.Kind
			event.Hint = dlErr.Hint
			event.Output = dlErr.Output
		}

		metrics.TasksTotal.WithLabelValues(string(domain.HistoryFailed)).Inc()
		metrics.TaskFailuresTotal.WithLabelValues(string(event.ErrorKind)).Inc()
		s.logQueueEvent("task_failed",
			zap.String("id", task.ID),
			zap.String("kind", string(event.ErrorKind)),
			zap.String("failure", string(event.Failure)),
			zap.Error(err))
		if s.multiLogger != nil {
			s.multiLogger.LogAppError("Download failed",
				zap.String("id", task.ID),
				zap.String("url", task.SourceURL),
				zap.Error(err))
		}
	}

	s.publish(event)

	if s.history != nil {
		record := domain.NewHistoryRecord(task, task.Title, startedAt, err)
		if herr := s.history.Create(record); herr != nil {
			s.logger.Error("Failed to record history", zap.String("id", task.ID), zap.Error(herr))
		}
	}
}

func (s *QueueScheduler) publish(event domain.Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	if s.publisher != nil {
		s.publisher.Publish(event)
	}
}

func (s *QueueScheduler) logQueueEvent(event string, fields ...zap.Field) {
	if s.multiLogger != nil {
		s.multiLogger.LogQueueEvent(event, fields...)
	}
	s.logger.Debug(event, fields...)
}

func (s *QueueScheduler) checkInterval() time.Duration {
	if s.config.CheckInterval <= 0 {
		return 10 * time.Second
	}
	return s.config.CheckInterval
}
