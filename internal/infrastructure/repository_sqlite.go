package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/sstube-go/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLiteHistoryRepository implements domain.HistoryRepository using SQLite
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository opens (and migrates) the history database
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.HistoryRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Create stores a terminal task record
func (r *SQLiteHistoryRepository) Create(record *domain.HistoryRecord) error {
	return r.db.Create(record).Error
}

// FindByTaskID returns the newest record of a task, or nil when there is none
func (r *SQLiteHistoryRepository) FindByTaskID(taskID string) (*domain.HistoryRecord, error) {
	var record domain.HistoryRecord
	err := r.db.Where("task_id = ?", taskID).Order("finished_at DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// FindRecent returns the newest records first; limit 0 returns everything
func (r *SQLiteHistoryRepository) FindRecent(limit int) ([]*domain.HistoryRecord, error) {
	var records []*domain.HistoryRecord
	query := r.db.Order("finished_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&records).Error
	return records, err
}

// FindByStatus finds records by status, newest first
func (r *SQLiteHistoryRepository) FindByStatus(status domain.HistoryStatus) ([]*domain.HistoryRecord, error) {
	var records []*domain.HistoryRecord
	err := r.db.Where("status = ?", status).Order("finished_at DESC, id DESC").Find(&records).Error
	return records, err
}

// DeleteAll clears the history
func (r *SQLiteHistoryRepository) DeleteAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.HistoryRecord{}).Error
}

// GetStats returns history statistics
func (r *SQLiteHistoryRepository) GetStats() (*domain.HistoryStats, error) {
	stats := &domain.HistoryStats{}

	statusCounts := []struct {
		Status domain.HistoryStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.HistoryRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		stats.Total += sc.Count
		switch sc.Status {
		case domain.HistoryCompleted:
			stats.Completed = sc.Count
		case domain.HistoryFailed:
			stats.Failed = sc.Count
		case domain.HistoryCancelled:
			stats.Cancelled = sc.Count
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
