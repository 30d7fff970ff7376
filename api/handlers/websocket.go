package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yourusername/sstube-go/internal/domain"
	"github.com/yourusername/sstube-go/pkg/logger"
	"go.uber.org/zap"
)

const (
	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// EventSource hands out event subscriptions
type EventSource interface {
	Subscribe() (<-chan domain.Event, func())
}

// StreamHandler streams scheduler events and log tails over WebSocket
type StreamHandler struct {
	events    EventSource
	logReader *logger.LogReader
	logger    *zap.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(events EventSource, logsDir string, log *zap.Logger) *StreamHandler {
	return &StreamHandler{
		events:    events,
		logReader: logger.NewLogReader(logsDir),
		logger:    log,
	}
}

// HandleEvents handles GET /api/v1/events. The optional task query limits
// the stream to one task plus queue-level events.
func (h *StreamHandler) HandleEvents(c *gin.Context) {
	taskID := c.Query("task")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	h.logger.Debug("Event stream client connected",
		zap.String("task", taskID),
		zap.String("remote_addr", c.Request.RemoteAddr))

	done := readUntilClosed(conn)
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				closeNormally(conn)
				return
			}
			if taskID != "" && event.TaskID != "" && event.TaskID != taskID {
				continue
			}
			if err := writeJSON(conn, event); err != nil {
				h.logger.Debug("Event stream write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := ping(conn); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

// HandleLogStream handles GET /api/v1/logs/:category/stream
func (h *StreamHandler) HandleLogStream(c *gin.Context) {
	category, err := logger.ParseCategory(c.Param("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	// Send the recent history first
	if recent, err := h.logReader.ReadLogs(category, time.Now(), 50); err == nil {
		for _, entry := range recent {
			if err := writeJSON(conn, entry); err != nil {
				return
			}
		}
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	entries := make(chan logger.LogEntry, 100)
	go func() {
		if err := h.logReader.TailLogs(ctx, category, entries); err != nil {
			h.logger.Error("Log tailing error", zap.String("category", string(category)), zap.Error(err))
			cancel()
		}
	}()

	done := readUntilClosed(conn)
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-entries:
			if err := writeJSON(conn, entry); err != nil {
				return
			}
		case <-ticker.C:
			if err := ping(conn); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// readUntilClosed drains client frames so that close and pong are processed
func readUntilClosed(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

func writeJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(v)
}

func ping(conn *websocket.Conn) error {
	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func closeNormally(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
}
