package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/sstube-go/internal/domain"
	"github.com/yourusername/sstube-go/internal/metrics"
	"go.uber.org/zap"
)

// DownloadRequest carries the user intent for a single item or a collection
type DownloadRequest struct {
	URL            string `json:"url" binding:"required"`
	Mode           string `json:"mode"`
	DestinationDir string `json:"destination_dir"`
	VideoQuality   string `json:"video_quality"`
	AudioBitrate   int    `json:"audio_bitrate"`
	CookieFile     string `json:"cookie_file"`
}

// SelectionRequest enqueues chosen entries of a resolved collection
type SelectionRequest struct {
	DownloadRequest
	Entries []domain.MediaEntry `json:"entries"`
}

// CollectionListing is the result of resolving a playlist or channel
type CollectionListing struct {
	URL     string              `json:"url"`
	Mode    string              `json:"mode"`
	Entries []domain.MediaEntry `json:"entries"`
}

// DownloadService is the entry point used by the HTTP API
type DownloadService struct {
	scheduler  *QueueScheduler
	enumerator domain.CollectionEnumerator
	history    domain.HistoryRepository
	config     *domain.Config
	logger     *zap.Logger
}

// NewDownloadService creates a new download service. history may be nil.
func NewDownloadService(
	scheduler *QueueScheduler,
	enumerator domain.CollectionEnumerator,
	history domain.HistoryRepository,
	config *domain.Config,
	logger *zap.Logger,
) *DownloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownloadService{
		scheduler:  scheduler,
		enumerator: enumerator,
		history:    history,
		config:     config,
		logger:     logger,
	}
}

// SubmitSingle validates a single-item request and enqueues it
func (s *DownloadService) SubmitSingle(req DownloadRequest) (domain.DownloadTask, error) {
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return domain.DownloadTask{}, err
	}
	if mode.Collection != domain.CollectionNone {
		return domain.DownloadTask{}, domain.NewValidationError("mode", "playlist and channel modes must be resolved as a collection first")
	}

	url := strings.TrimSpace(req.URL)
	if err := domain.ValidateRequestURL(url, mode); err != nil {
		return domain.DownloadTask{}, err
	}

	opts, err := s.taskOptions(req, mode)
	if err != nil {
		return domain.DownloadTask{}, err
	}

	task, err := domain.NewDownloadTask(url, "", opts)
	if err != nil {
		return domain.DownloadTask{}, err
	}

	s.scheduler.Enqueue(task)
	s.logger.Info("Download queued",
		zap.String("id", task.ID),
		zap.String("url", task.SourceURL),
		zap.String("mode", mode.String()))

	return task, nil
}

// ResolveCollection validates a collection request and lists its entries.
// It does not wait for the queue.
func (s *DownloadService) ResolveCollection(ctx context.Context, req DownloadRequest) (*CollectionListing, error) {
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	if mode.Collection == domain.CollectionNone {
		return nil, domain.NewValidationError("mode", "a playlist or channel mode is required")
	}

	url := strings.TrimSpace(req.URL)
	if err := domain.ValidateRequestURL(url, mode); err != nil {
		return nil, err
	}

	entries, err := s.enumerator.Enumerate(ctx, url, mode.Collection, s.cookieFile(req))
	if err != nil {
		metrics.EnumerationsTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Collection enumeration failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}

	status := "success"
	if len(entries) == 0 {
		status = "empty"
	}
	metrics.EnumerationsTotal.WithLabelValues(status).Inc()

	return &CollectionListing{URL: url, Mode: mode.String(), Entries: entries}, nil
}

// EnqueueSelection turns the chosen entries into tasks in the given order.
// The whole batch is rejected if any entry is invalid.
func (s *DownloadService) EnqueueSelection(req SelectionRequest) ([]domain.DownloadTask, error) {
	if len(req.Entries) == 0 {
		return nil, domain.NewValidationError("entries", "no items selected")
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	opts, err := s.taskOptions(req.DownloadRequest, mode)
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.DownloadTask, 0, len(req.Entries))
	for i, entry := range req.Entries {
		url := entry.URL
		if url == "" {
			url = entry.RawURL
		}
		task, err := domain.NewDownloadTask(url, entry.Title, opts)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		tasks = append(tasks, task)
	}

	s.scheduler.EnqueueAll(tasks)
	s.logger.Info("Collection selection queued",
		zap.String("collection", req.URL),
		zap.Int("count", len(tasks)))

	return tasks, nil
}

// Status returns the pending and active tasks
func (s *DownloadService) Status() QueueSnapshot {
	return s.scheduler.Snapshot()
}

// Cancel cancels a pending or active task
func (s *DownloadService) Cancel(taskID string) error {
	return s.scheduler.Cancel(taskID)
}

// History returns the newest history records
func (s *DownloadService) History(limit int) ([]*domain.HistoryRecord, error) {
	if s.history == nil {
		return []*domain.HistoryRecord{}, nil
	}
	return s.history.FindRecent(limit)
}

// HistoryStats returns counts per terminal status
func (s *DownloadService) HistoryStats() (*domain.HistoryStats, error) {
	if s.history == nil {
		return &domain.HistoryStats{}, nil
	}
	return s.history.GetStats()
}

// ClearHistory deletes every history record
func (s *DownloadService) ClearHistory() error {
	if s.history == nil {
		return nil
	}
	return s.history.DeleteAll()
}

// taskOptions fills request gaps from the configured defaults
func (s *DownloadService) taskOptions(req DownloadRequest, mode domain.Mode) (domain.TaskOptions, error) {
	dir := req.DestinationDir
	if dir == "" {
		dir = s.config.Download.BaseDir
	}

	quality := req.VideoQuality
	if quality == "" {
		quality = s.config.Download.DefaultVideoQuality
	}
	height, err := domain.ParseVideoQuality(quality)
	if err != nil {
		return domain.TaskOptions{}, err
	}

	bitrate := req.AudioBitrate
	if bitrate == 0 {
		bitrate = s.config.Download.DefaultAudioBitrate
	}

	return domain.TaskOptions{
		DestinationDir:   expandPath(dir),
		Mode:             mode,
		VideoHeight:      height,
		AudioBitrateKbps: bitrate,
		CredentialsPath:  s.cookieFile(req),
	}, nil
}

func (s *DownloadService) cookieFile(req DownloadRequest) string {
	if req.CookieFile != "" {
		return expandPath(req.CookieFile)
	}
	return s.config.Download.CookieFile
}
