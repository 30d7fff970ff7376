package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/sstube-go/internal/domain"
)

func TestEventPrinter_TaskLifecycle(t *testing.T) {
	var out bytes.Buffer
	printer := newEventPrinter(&out, false)

	printer.handle(domain.Event{Type: domain.EventTaskQueued, TaskID: "a", URL: "https://www.youtube.com/watch?v=a", Pending: 1})
	printer.handle(domain.Event{Type: domain.EventTaskStarted, TaskID: "a", Title: "Song A"})
	printer.handle(domain.Event{Type: domain.EventProgress, TaskID: "a", Percent: 33})
	printer.handle(domain.Event{Type: domain.EventLog, TaskID: "a", Line: "[download]  33.0%"})
	printer.handle(domain.Event{Type: domain.EventTaskSucceeded, TaskID: "a", Title: "Song A"})
	printer.handle(domain.Event{Type: domain.EventQueueIdle})

	text := out.String()
	assert.Contains(t, text, "+ queued https://www.youtube.com/watch?v=a (1 pending)")
	assert.Contains(t, text, "> Song A")
	assert.Contains(t, text, "✓ Song A")
	assert.Contains(t, text, "Queue idle")
	assert.NotContains(t, text, "[download]", "log lines are hidden unless verbose")
	assert.Empty(t, printer.bars)
}

func TestEventPrinter_FailureShowsHint(t *testing.T) {
	var out bytes.Buffer
	printer := newEventPrinter(&out, true)

	printer.handle(domain.Event{Type: domain.EventTaskStarted, TaskID: "b", Title: "Clip"})
	printer.handle(domain.Event{Type: domain.EventLog, TaskID: "b", Line: "ERROR: Private video"})
	printer.handle(domain.Event{
		Type:   domain.EventTaskFailed,
		TaskID: "b",
		Title:  "Clip",
		Error:  "download tool exited with code 1 (authentication)",
		Hint:   "refresh the cookie file",
	})

	text := out.String()
	assert.Contains(t, text, "ERROR: Private video")
	assert.Contains(t, text, "✗ Clip: download tool exited with code 1 (authentication)")
	assert.Contains(t, text, "hint: refresh the cookie file")
}

func TestUntilTaskDone(t *testing.T) {
	stop := untilTaskDone("a")

	assert.False(t, stop(domain.Event{Type: domain.EventProgress, TaskID: "a"}))
	assert.False(t, stop(domain.Event{Type: domain.EventTaskSucceeded, TaskID: "b"}))
	assert.True(t, stop(domain.Event{Type: domain.EventTaskCancelled, TaskID: "a"}))
}

func TestAPIClient_WebsocketURL(t *testing.T) {
	client := newAPIClient("https://example.com:8443/")
	got, err := client.websocketURL("/api/v1/events", nil)
	assert.NoError(t, err)
	assert.Equal(t, "wss://example.com:8443/api/v1/events", got)

	client = newAPIClient("http://localhost:8085")
	got, err = client.websocketURL("/api/v1/events", map[string][]string{"task": {"x"}})
	assert.NoError(t, err)
	assert.Equal(t, "ws://localhost:8085/api/v1/events?task=x", got)
}
