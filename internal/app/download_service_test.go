package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sstube-go/internal/domain"
)

func newTestService(t *testing.T, enumerator domain.CollectionEnumerator) (*DownloadService, *QueueScheduler) {
	t.Helper()
	config := domain.DefaultConfig()
	config.Download.BaseDir = t.TempDir()
	config.Download.CookieFile = "/etc/sstube/cookies.txt"
	config.Download.DefaultVideoQuality = "1080p"
	config.Download.DefaultAudioBitrate = 192

	// The scheduler is never started so tasks stay pending
	scheduler := NewQueueScheduler(NewTaskQueue(), newFakeRunner(), nil, nil, &config.Queue, nil, nil)
	return NewDownloadService(scheduler, enumerator, &mockHistoryRepo{}, config, nil), scheduler
}

func TestDownloadService_SubmitSingleAppliesDefaults(t *testing.T) {
	service, scheduler := newTestService(t, &fakeEnumerator{})

	task, err := service.SubmitSingle(DownloadRequest{URL: " https://www.youtube.com/watch?v=abc "})
	require.NoError(t, err)

	assert.Equal(t, "https://www.youtube.com/watch?v=abc", task.SourceURL)
	assert.Equal(t, 1080, task.VideoHeight)
	assert.Zero(t, task.AudioBitrateKbps)
	assert.Equal(t, "/etc/sstube/cookies.txt", task.CredentialsPath)
	assert.Equal(t, service.config.Download.BaseDir, task.DestinationDir)

	snapshot := scheduler.Snapshot()
	require.Len(t, snapshot.Pending, 1)
	assert.Equal(t, task.ID, snapshot.Pending[0].ID)
}

func TestDownloadService_SubmitSingleAudio(t *testing.T) {
	service, _ := newTestService(t, &fakeEnumerator{})

	task, err := service.SubmitSingle(DownloadRequest{
		URL:          "https://www.youtube.com/watch?v=abc",
		Mode:         "MP3 Only",
		VideoQuality: "720p",
		CookieFile:   "/tmp/mine.txt",
	})
	require.NoError(t, err)

	assert.True(t, task.Mode.WantsAudioOnly)
	assert.Equal(t, 192, task.AudioBitrateKbps)
	assert.Equal(t, domain.BestQuality, task.VideoHeight)
	assert.Equal(t, "/tmp/mine.txt", task.CredentialsPath)
}

func TestDownloadService_SubmitSingleValidation(t *testing.T) {
	tests := []struct {
		name string
		req  DownloadRequest
	}{
		{"empty url", DownloadRequest{URL: ""}},
		{"relative url", DownloadRequest{URL: "watch?v=abc"}},
		{"unknown mode", DownloadRequest{URL: "https://www.youtube.com/watch?v=abc", Mode: "karaoke"}},
		{"collection mode", DownloadRequest{URL: "https://www.youtube.com/playlist?list=PL1", Mode: "playlist-video"}},
		{"channel url as video", DownloadRequest{URL: "https://www.youtube.com/@someone"}},
		{"bad quality", DownloadRequest{URL: "https://www.youtube.com/watch?v=abc", VideoQuality: "huge"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, scheduler := newTestService(t, &fakeEnumerator{})

			_, err := service.SubmitSingle(tt.req)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Empty(t, scheduler.Snapshot().Pending)
		})
	}
}

func TestDownloadService_ResolveCollection(t *testing.T) {
	enumerator := &fakeEnumerator{entries: []domain.MediaEntry{
		{Title: "One", URL: "https://www.youtube.com/watch?v=1"},
		{Title: "Two", URL: "https://www.youtube.com/watch?v=2"},
	}}
	service, scheduler := newTestService(t, enumerator)

	listing, err := service.ResolveCollection(context.Background(), DownloadRequest{
		URL:  "https://www.youtube.com/@someone",
		Mode: "channel shorts",
	})
	require.NoError(t, err)

	assert.Equal(t, "channel-shorts", listing.Mode)
	assert.Len(t, listing.Entries, 2)
	assert.Equal(t, []domain.CollectionKind{domain.CollectionChannelShortForm}, enumerator.calls)
	assert.Empty(t, scheduler.Snapshot().Pending, "resolving must not enqueue")
}

func TestDownloadService_ResolveCollectionErrors(t *testing.T) {
	t.Run("single mode", func(t *testing.T) {
		service, _ := newTestService(t, &fakeEnumerator{})
		_, err := service.ResolveCollection(context.Background(), DownloadRequest{URL: "https://www.youtube.com/playlist?list=PL1"})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("playlist url without list", func(t *testing.T) {
		enumerator := &fakeEnumerator{}
		service, _ := newTestService(t, enumerator)
		_, err := service.ResolveCollection(context.Background(), DownloadRequest{
			URL:  "https://www.youtube.com/watch?v=abc",
			Mode: "playlist-audio",
		})
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		assert.Empty(t, enumerator.calls)
	})

	t.Run("extraction failure", func(t *testing.T) {
		extractionErr := &domain.ExtractionError{URL: "https://www.youtube.com/playlist?list=PL1", Reason: "no entries found"}
		service, _ := newTestService(t, &fakeEnumerator{err: extractionErr})
		_, err := service.ResolveCollection(context.Background(), DownloadRequest{
			URL:  "https://www.youtube.com/playlist?list=PL1",
			Mode: "playlist-video",
		})
		assert.Equal(t, domain.KindExtraction, domain.KindOf(err))
	})
}

func TestDownloadService_EnqueueSelectionKeepsOrder(t *testing.T) {
	service, scheduler := newTestService(t, &fakeEnumerator{})

	tasks, err := service.EnqueueSelection(SelectionRequest{
		DownloadRequest: DownloadRequest{
			URL:  "https://www.youtube.com/playlist?list=PL1",
			Mode: "playlist-audio",
		},
		Entries: []domain.MediaEntry{
			{Title: "Third", URL: "https://www.youtube.com/watch?v=3"},
			{Title: "First", RawURL: "https://www.youtube.com/watch?v=1"},
		},
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "Third", tasks[0].Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=1", tasks[1].SourceURL)
	for _, task := range tasks {
		assert.True(t, task.Mode.WantsAudioOnly)
		assert.Equal(t, domain.CollectionPlaylist, task.Mode.Collection)
	}

	pending := scheduler.Snapshot().Pending
	require.Len(t, pending, 2)
	assert.Equal(t, tasks[0].ID, pending[0].ID)
	assert.Equal(t, tasks[1].ID, pending[1].ID)
}

func TestDownloadService_EnqueueSelectionRejectsBatch(t *testing.T) {
	service, scheduler := newTestService(t, &fakeEnumerator{})

	_, err := service.EnqueueSelection(SelectionRequest{
		DownloadRequest: DownloadRequest{Mode: "playlist-video"},
	})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = service.EnqueueSelection(SelectionRequest{
		DownloadRequest: DownloadRequest{Mode: "playlist-video"},
		Entries: []domain.MediaEntry{
			{Title: "ok", URL: "https://www.youtube.com/watch?v=1"},
			{Title: "broken", URL: "not a url"},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 2")
	assert.Empty(t, scheduler.Snapshot().Pending)
}

func TestDownloadService_CancelAndHistory(t *testing.T) {
	service, scheduler := newTestService(t, &fakeEnumerator{})

	task, err := service.SubmitSingle(DownloadRequest{URL: "https://www.youtube.com/watch?v=abc"})
	require.NoError(t, err)

	require.NoError(t, service.Cancel(task.ID))
	assert.Empty(t, scheduler.Snapshot().Pending)
	assert.ErrorIs(t, service.Cancel(task.ID), domain.ErrTaskNotFound)

	history := service.history.(*mockHistoryRepo)
	require.NoError(t, history.Create(&domain.HistoryRecord{TaskID: "a", Status: domain.HistoryCompleted}))
	require.NoError(t, history.Create(&domain.HistoryRecord{TaskID: "b", Status: domain.HistoryFailed}))

	records, err := service.History(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "b", records[0].TaskID)

	stats, err := service.HistoryStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Failed)

	require.NoError(t, service.ClearHistory())
	records, err = service.History(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}
