package infrastructure

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yourusername/sstube-go/internal/domain"
)

type sentCommand struct {
	name string
	args []string
}

func newTestNotifier(enabled bool, method string) (*NotificationService, *[]sentCommand) {
	var sent []sentCommand
	n := NewNotificationService(&domain.NotificationConfig{Enabled: enabled, Method: method}, nil)
	n.run = func(name string, args ...string) error {
		sent = append(sent, sentCommand{name: name, args: args})
		return nil
	}
	return n, &sent
}

func TestNotification_Disabled(t *testing.T) {
	n, sent := newTestNotifier(false, "notify-send")

	assert.NoError(t, n.Send("title", "message"))
	assert.Empty(t, *sent)
}

func TestNotification_NotifySend(t *testing.T) {
	n, sent := newTestNotifier(true, "notify-send")

	n.HandleEvent(domain.Event{Type: domain.EventTaskSucceeded, Title: "My Video"})

	if assert.Len(t, *sent, 1) {
		assert.Equal(t, "notify-send", (*sent)[0].name)
		assert.Equal(t, []string{"Download Completed", "Success: My Video"}, (*sent)[0].args)
	}
}

func TestNotification_OSAScriptEscapesQuotes(t *testing.T) {
	n, sent := newTestNotifier(true, "osascript")

	assert.NoError(t, n.Send(`Say "hi"`, "done"))

	if assert.Len(t, *sent, 1) {
		assert.Equal(t, []string{"-e", `display notification "done" with title "Say \"hi\""`}, (*sent)[0].args)
	}
}

func TestNotification_IgnoresProgressEvents(t *testing.T) {
	n, sent := newTestNotifier(true, "notify-send")

	n.HandleEvent(domain.Event{Type: domain.EventProgress, Percent: 50})
	n.HandleEvent(domain.Event{Type: domain.EventLog, Line: "x"})

	assert.Empty(t, *sent)
}

func TestNotification_ReportsCommandFailure(t *testing.T) {
	n, _ := newTestNotifier(true, "notify-send")
	n.run = func(string, ...string) error { return errors.New("no display") }

	assert.Error(t, n.Send("a", "b"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abc...", truncateString("abcdef", 3))
}
