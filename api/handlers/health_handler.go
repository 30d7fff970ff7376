package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/sstube-go/internal/app"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	scheduler *app.QueueScheduler
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(scheduler *app.QueueScheduler) *HealthHandler {
	return &HealthHandler{
		scheduler: scheduler,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Queue   struct {
		Running bool   `json:"running"`
		Pending int    `json:"pending"`
		Active  string `json:"active,omitempty"`
	} `json:"queue"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	snapshot := h.scheduler.Snapshot()
	response.Queue.Running = h.scheduler.IsRunning()
	response.Queue.Pending = len(snapshot.Pending)
	if snapshot.Active != nil {
		response.Queue.Active = snapshot.Active.ID
	}

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.scheduler.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "queue scheduler not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
