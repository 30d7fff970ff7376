package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorKind
	}{
		{"validation", NewValidationError("url", "bad"), KindValidation},
		{"extraction", &ExtractionError{URL: "u"}, KindExtraction},
		{"launch", &ProcessLaunchError{Binary: "yt-dlp", Err: errors.New("not found")}, KindProcessLaunch},
		{"download", &DownloadError{ExitCode: 1}, KindDownload},
		{"cancelled", &CancellationError{TaskID: "t"}, KindCancelled},
		{"wrapped cancelled", fmt.Errorf("run: %w", &CancellationError{TaskID: "t"}), KindCancelled},
		{"plain", errors.New("boom"), KindDownload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid url: bad", NewValidationError("url", "bad").Error())
	assert.Equal(t, "failed to extract collection https://x: no entries",
		(&ExtractionError{URL: "https://x", Reason: "no entries"}).Error())
	assert.Contains(t, (&DownloadError{ExitCode: 2, Kind: FailureForbidden}).Error(), "code 2")

	launch := &ProcessLaunchError{Binary: "yt-dlp", Err: errors.New("executable file not found")}
	assert.ErrorIs(t, launch, launch.Err)
}

func TestNewHistoryRecord(t *testing.T) {
	task, err := NewDownloadTask("https://www.youtube.com/watch?v=abc", "", TaskOptions{DestinationDir: "/d"})
	assert.NoError(t, err)

	ok := NewHistoryRecord(task, "Title", task.CreatedAt, nil)
	assert.Equal(t, HistoryCompleted, ok.Status)
	assert.Equal(t, "video", ok.Mode)
	assert.Empty(t, ok.ErrorKind)

	failed := NewHistoryRecord(task, "Title", task.CreatedAt, &DownloadError{ExitCode: 1, Kind: FailureUnknown})
	assert.Equal(t, HistoryFailed, failed.Status)
	assert.Equal(t, KindDownload, failed.ErrorKind)

	cancelled := NewHistoryRecord(task, "Title", task.CreatedAt, &CancellationError{TaskID: task.ID})
	assert.Equal(t, HistoryCancelled, cancelled.Status)
}
