package domain

// HistoryRepository defines the interface for history persistence
type HistoryRepository interface {
	// Create stores a terminal task record
	Create(record *HistoryRecord) error

	// FindByTaskID finds the record of a task
	FindByTaskID(taskID string) (*HistoryRecord, error)

	// FindRecent returns the newest records first, at most limit (0 = all)
	FindRecent(limit int) ([]*HistoryRecord, error)

	// FindByStatus finds records by status
	FindByStatus(status HistoryStatus) ([]*HistoryRecord, error)

	// DeleteAll clears the history
	DeleteAll() error

	// GetStats returns history statistics
	GetStats() (*HistoryStats, error)
}

// HistoryStats represents history statistics
type HistoryStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
}
