package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/yourusername/sstube-go/internal/domain"
	"go.uber.org/zap"
)

// NotificationService sends desktop notifications for task events
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(message), escapeAppleScript(title))
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// HandleEvent turns scheduler events into notifications. Progress and log
// events are ignored.
func (n *NotificationService) HandleEvent(event domain.Event) {
	name := event.Title
	if name == "" {
		name = event.URL
	}
	name = truncateString(name, 40)

	switch event.Type {
	case domain.EventTaskStarted:
		n.Send("Download Started", fmt.Sprintf("Processing: %s", name))
	case domain.EventTaskSucceeded:
		n.Send("Download Completed", fmt.Sprintf("Success: %s", name))
	case domain.EventTaskFailed:
		n.Send("Download Failed", fmt.Sprintf("Failed: %s (%s)", name, event.Failure))
	case domain.EventTaskCancelled:
		n.Send("Download Cancelled", fmt.Sprintf("Cancelled: %s", name))
	case domain.EventQueueIdle:
		n.Send("Queue Empty", "All downloads completed")
	}
}

func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
