package domain

import "context"

// UnknownTitle is shown when a title cannot be resolved
const UnknownTitle = "Unknown Title"

// TaskRunner executes one download task to completion
type TaskRunner interface {
	// ResolveTitle returns the task's display title. It never fails; on error it returns UnknownTitle.
	ResolveTitle(ctx context.Context, task DownloadTask) string

	// Run blocks until the tool exits or ctx is cancelled. A nil error is success.
	Run(ctx context.Context, task DownloadTask, onProgress ProgressFunc, onLog LogFunc) error
}

// CollectionEnumerator lists the members of a playlist or channel
type CollectionEnumerator interface {
	Enumerate(ctx context.Context, collectionURL string, kind CollectionKind, credentialsPath string) ([]MediaEntry, error)
}
