package domain

import "time"

// HistoryStatus is the terminal outcome of a task
type HistoryStatus string

const (
	HistoryCompleted HistoryStatus = "completed"
	HistoryFailed    HistoryStatus = "failed"
	HistoryCancelled HistoryStatus = "cancelled"
)

// HistoryRecord is the persisted trace of a finished task
type HistoryRecord struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	TaskID         string        `json:"task_id" gorm:"not null;index"`
	URL            string        `json:"url" gorm:"not null"`
	Title          string        `json:"title"`
	Mode           string        `json:"mode"`
	DestinationDir string        `json:"destination_dir"`
	Status         HistoryStatus `json:"status" gorm:"not null;index"`
	ErrorKind      ErrorKind     `json:"error_kind,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at" gorm:"index"`
}

// NewHistoryRecord builds a record from a task and its terminal error
func NewHistoryRecord(task DownloadTask, title string, startedAt time.Time, runErr error) *HistoryRecord {
	record := &HistoryRecord{
		TaskID:         task.ID,
		URL:            task.SourceURL,
		Title:          title,
		Mode:           task.Mode.String(),
		DestinationDir: task.DestinationDir,
		Status:         HistoryCompleted,
		StartedAt:      startedAt,
		FinishedAt:     time.Now(),
	}
	if runErr != nil {
		record.ErrorKind = KindOf(runErr)
		record.ErrorMessage = runErr.Error()
		record.Status = HistoryFailed
		if record.ErrorKind == KindCancelled {
			record.Status = HistoryCancelled
		}
	}
	return record
}
