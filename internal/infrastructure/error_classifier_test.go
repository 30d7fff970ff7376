package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/sstube-go/internal/domain"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected domain.FailureKind
	}{
		{"dpapi", "ERROR: Failed to decrypt with DPAPI", domain.FailureAuthentication},
		{"sign in", "ERROR: [youtube] abc: Sign in to confirm you're not a bot", domain.FailureAuthentication},
		{"forbidden", "ERROR: unable to download video data: HTTP Error 403: Forbidden", domain.FailureForbidden},
		{"unavailable", "ERROR: [youtube] abc: Video unavailable", domain.FailureUnavailable},
		{"unknown", "ERROR: something else went wrong", domain.FailureUnknown},
		{"empty", "", domain.FailureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, hint := ClassifyFailure(tt.output)
			assert.Equal(t, tt.expected, kind)
			assert.NotEmpty(t, hint)
		})
	}
}

func TestNewDownloadError(t *testing.T) {
	err := NewDownloadError(1, "line one\nERROR: HTTP Error 403: Forbidden")

	assert.Equal(t, 1, err.ExitCode)
	assert.Equal(t, domain.FailureForbidden, err.Kind)
	assert.Contains(t, err.Output, "HTTP Error 403")
	assert.ErrorIs(t, err, &domain.DownloadError{})
}
