package domain

import (
	"errors"
	"fmt"
)

// ErrTaskNotFound is returned when a task ID is neither pending nor active
var ErrTaskNotFound = errors.New("task not found")

// ErrorKind names a class in the failure taxonomy
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindExtraction    ErrorKind = "extraction"
	KindProcessLaunch ErrorKind = "process_launch"
	KindDownload      ErrorKind = "download"
	KindCancelled     ErrorKind = "cancelled"
)

// FailureKind classifies a failed download by its diagnostic text
type FailureKind string

const (
	FailureAuthentication FailureKind = "authentication"
	FailureForbidden      FailureKind = "forbidden"
	FailureUnavailable    FailureKind = "unavailable"
	FailureUnknown        FailureKind = "unknown"
)

// ValidationError reports malformed user input. It never reaches the queue.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ExtractionError reports a failed or empty collection enumeration
type ExtractionError struct {
	URL    string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	msg := fmt.Sprintf("failed to extract collection %s", e.URL)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is allows for error checking with errors.Is().
func (e *ExtractionError) Is(target error) bool {
	_, ok := target.(*ExtractionError)
	return ok
}

// ProcessLaunchError reports that the download tool could not be started
type ProcessLaunchError struct {
	Binary string
	Err    error
}

func (e *ProcessLaunchError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Binary, e.Err)
}

func (e *ProcessLaunchError) Unwrap() error { return e.Err }

// Is allows for error checking with errors.Is().
func (e *ProcessLaunchError) Is(target error) bool {
	_, ok := target.(*ProcessLaunchError)
	return ok
}

// DownloadError reports a non-zero exit of the download tool
type DownloadError struct {
	ExitCode int
	Output   string
	Kind     FailureKind
	Hint     string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download tool exited with code %d (%s)", e.ExitCode, e.Kind)
}

// Is allows for error checking with errors.Is().
func (e *DownloadError) Is(target error) bool {
	_, ok := target.(*DownloadError)
	return ok
}

// CancellationError reports a task terminated on caller request
type CancellationError struct {
	TaskID string
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("task %s cancelled", e.TaskID)
}

// Is allows for error checking with errors.Is().
func (e *CancellationError) Is(target error) bool {
	_, ok := target.(*CancellationError)
	return ok
}

// KindOf maps an error onto the taxonomy. Unknown errors count as download failures.
func KindOf(err error) ErrorKind {
	var (
		validation *ValidationError
		extraction *ExtractionError
		launch     *ProcessLaunchError
		cancelled  *CancellationError
	)
	switch {
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &extraction):
		return KindExtraction
	case errors.As(err, &launch):
		return KindProcessLaunch
	case errors.As(err, &cancelled):
		return KindCancelled
	default:
		return KindDownload
	}
}
