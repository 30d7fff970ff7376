package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryQueue    LogCategory = "queue"    // Queue lifecycle events (JSON)
	CategoryError    LogCategory = "error"    // Application errors (JSON)
	CategoryDownload LogCategory = "download" // Raw yt-dlp transcript (plain text)
)

// Categories lists every category that has a daily log file
var Categories = []LogCategory{CategoryQueue, CategoryError, CategoryDownload}

// ParseCategory validates a category name
func ParseCategory(name string) (LogCategory, error) {
	for _, c := range Categories {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown log category: %s", name)
}

// MultiLogger provides categorized logging with separate daily files.
// Queue and error events are JSON; the download transcript is raw tool output.
type MultiLogger struct {
	loggers map[LogCategory]*zap.Logger
	config  MultiLoggerConfig

	mu           sync.Mutex
	transcript   *os.File
	transcriptOn string // date of the open transcript file
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // Directory for log files
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}

	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	ml := &MultiLogger{
		loggers: make(map[LogCategory]*zap.Logger),
		config:  config,
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	queueLogger, err := ml.createStructuredLogger(CategoryQueue, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue logger: %w", err)
	}
	ml.loggers[CategoryQueue] = queueLogger

	errorLogger, err := ml.createStructuredLogger(CategoryError, zapcore.ErrorLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create error logger: %w", err)
	}
	ml.loggers[CategoryError] = errorLogger

	return ml, nil
}

// createStructuredLogger creates a JSON logger whose file follows the current date
func (ml *MultiLogger) createStructuredLogger(category LogCategory, level zapcore.Level) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.CallerKey = ""

	writer := &dailyFile{dir: ml.config.LogsDir, category: category}
	if _, err := writer.file(); err != nil {
		return nil, err
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, level)
	return zap.New(core), nil
}

// GetLogsDir returns the logs directory path
func (ml *MultiLogger) GetLogsDir() string {
	return ml.config.LogsDir
}

// GetLogger returns the structured logger for a specific category
func (ml *MultiLogger) GetLogger(category LogCategory) *zap.Logger {
	if logger, ok := ml.loggers[category]; ok {
		return logger
	}
	return ml.loggers[CategoryError]
}

// Queue returns the queue logger (JSON format)
func (ml *MultiLogger) Queue() *zap.Logger {
	return ml.GetLogger(CategoryQueue)
}

// Error returns the error logger (JSON format)
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.GetLogger(CategoryError)
}

// LogAppError logs an application-level error (Go errors, panics)
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.Error().Error(msg, fields...)
}

// LogQueueEvent logs a queue lifecycle event with structured data
func (ml *MultiLogger) LogQueueEvent(event string, fields ...zap.Field) {
	ml.Queue().Info(event, fields...)
}

// WriteDownloadHeader writes the start marker and command line of a download
func (ml *MultiLogger) WriteDownloadHeader(taskID, commandLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	ml.writeTranscript(fmt.Sprintf("\n=== [%s] Download: %s ===\n$ %s\n", timestamp, taskID, commandLine))
}

// WriteRawDownloadLog appends one line of tool output
func (ml *MultiLogger) WriteRawDownloadLog(line string) {
	ml.writeTranscript(line + "\n")
}

// WriteDownloadComplete writes the end marker of a download
func (ml *MultiLogger) WriteDownloadComplete(taskID string, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	ml.writeTranscript(fmt.Sprintf("[%s] %s: %s\n=== END %s ===\n\n", timestamp, status, message, taskID))
}

func (ml *MultiLogger) writeTranscript(text string) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	today := time.Now().Format("20060102")
	if ml.transcript == nil || ml.transcriptOn != today {
		if ml.transcript != nil {
			ml.transcript.Close()
		}
		path := filepath.Join(ml.config.LogsDir, fmt.Sprintf("%s-%s.log", CategoryDownload, today))
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			ml.transcript = nil
			ml.LogAppError("Failed to open download transcript", zap.String("path", path), zap.Error(err))
			return
		}
		ml.transcript = file
		ml.transcriptOn = today
	}

	if _, err := ml.transcript.WriteString(text); err != nil {
		ml.LogAppError("Failed to write download transcript", zap.Error(err))
	}
}

// Sync flushes all loggers
func (ml *MultiLogger) Sync() error {
	var lastErr error
	for _, logger := range ml.loggers {
		if err := logger.Sync(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Close flushes all loggers and closes the transcript
func (ml *MultiLogger) Close() error {
	lastErr := ml.Sync()

	ml.mu.Lock()
	defer ml.mu.Unlock()
	if ml.transcript != nil {
		if err := ml.transcript.Close(); err != nil {
			lastErr = err
		}
		ml.transcript = nil
	}
	return lastErr
}

// dailyFile is a zapcore.WriteSyncer that reopens its file when the date changes
type dailyFile struct {
	dir      string
	category LogCategory

	mu   sync.Mutex
	f    *os.File
	date string
}

func (d *dailyFile) file() (*os.File, error) {
	today := time.Now().Format("20060102")
	if d.f != nil && d.date == today {
		return d.f, nil
	}
	if d.f != nil {
		d.f.Close()
	}
	path := filepath.Join(d.dir, fmt.Sprintf("%s-%s.log", d.category, today))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		d.f = nil
		return nil, err
	}
	d.f, d.date = f, today
	return f, nil
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, err := d.file()
	if err != nil {
		return 0, err
	}
	return f.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.f == nil {
		return nil
	}
	return d.f.Sync()
}
