package domain

import "time"

// EventType identifies a queue or task notification
type EventType string

const (
	EventTaskQueued    EventType = "task_queued"
	EventTaskStarted   EventType = "task_started"
	EventProgress      EventType = "progress"
	EventLog           EventType = "log"
	EventTaskSucceeded EventType = "task_succeeded"
	EventTaskFailed    EventType = "task_failed"
	EventTaskCancelled EventType = "task_cancelled"
	EventQueueIdle     EventType = "queue_idle"
)

// IsTerminal reports whether no further events follow for the task
func (t EventType) IsTerminal() bool {
	return t == EventTaskSucceeded || t == EventTaskFailed || t == EventTaskCancelled
}

// Event is published to observers of the scheduler
type Event struct {
	Type      EventType   `json:"type"`
	TaskID    string      `json:"task_id,omitempty"`
	URL       string      `json:"url,omitempty"`
	Title     string      `json:"title,omitempty"`
	Percent   int         `json:"percent,omitempty"`
	Line      string      `json:"line,omitempty"`
	ErrorKind ErrorKind   `json:"error_kind,omitempty"`
	Failure   FailureKind `json:"failure,omitempty"`
	Error     string      `json:"error,omitempty"`
	Hint      string      `json:"hint,omitempty"`
	Output    string      `json:"output,omitempty"`
	Pending   int         `json:"pending"`
	Time      time.Time   `json:"time"`
}

// EventPublisher receives scheduler events
type EventPublisher interface {
	Publish(event Event)
}

// ProgressFunc receives a parsed progress percentage
type ProgressFunc func(percent int)

// LogFunc receives one raw line of tool output
type LogFunc func(line string)
