package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/sstube-go/internal/app"
	"go.uber.org/zap"
)

// TaskHandler handles task, collection, queue and history requests
type TaskHandler struct {
	service *app.DownloadService
	logger  *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(service *app.DownloadService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger,
	}
}

// AddTask handles POST /api/v1/tasks
func (h *TaskHandler) AddTask(c *gin.Context) {
	var req app.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.SubmitSingle(req)
	if err != nil {
		h.logger.Debug("Rejected download request", zap.String("url", req.URL), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// CancelTask handles DELETE /api/v1/tasks/:id
func (h *TaskHandler) CancelTask(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.Cancel(id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "task cancelled", "id": id})
}

// GetQueue handles GET /api/v1/queue
func (h *TaskHandler) GetQueue(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// ResolveCollection handles POST /api/v1/collections/resolve
func (h *TaskHandler) ResolveCollection(c *gin.Context) {
	var req app.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.service.ResolveCollection(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// EnqueueSelection handles POST /api/v1/collections/enqueue
func (h *TaskHandler) EnqueueSelection(c *gin.Context) {
	var req app.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tasks, err := h.service.EnqueueSelection(req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"count": len(tasks),
		"tasks": tasks,
	})
}

// GetHistory handles GET /api/v1/history
func (h *TaskHandler) GetHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	records, err := h.service.History(limit)
	if err != nil {
		h.logger.Error("Failed to read history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}

// GetHistoryStats handles GET /api/v1/history/stats
func (h *TaskHandler) GetHistoryStats(c *gin.Context) {
	stats, err := h.service.HistoryStats()
	if err != nil {
		h.logger.Error("Failed to get history stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ClearHistory handles DELETE /api/v1/history
func (h *TaskHandler) ClearHistory(c *gin.Context) {
	if err := h.service.ClearHistory(); err != nil {
		h.logger.Error("Failed to clear history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "history cleared"})
}
