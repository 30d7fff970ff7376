package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yourusername/sstube-go/api/handlers"
	"github.com/yourusername/sstube-go/api/middleware"
	"github.com/yourusername/sstube-go/internal/app"
	"github.com/yourusername/sstube-go/internal/domain"
	"github.com/yourusername/sstube-go/pkg/logger"
)

// RouterDeps are the components served by the HTTP API
type RouterDeps struct {
	Config      *domain.Config
	Service     *app.DownloadService
	Scheduler   *app.QueueScheduler
	Events      handlers.EventSource
	MultiLogger *logger.MultiLogger // optional
	Logger      *zap.Logger
}

// SetupRouter sets up the HTTP router
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	metricsPath := deps.Config.Metrics.Path

	// Middleware
	router.Use(middleware.Logger(deps.Logger, "/health", "/ready", metricsPath))
	router.Use(middleware.Recovery(deps.Logger, deps.MultiLogger))
	router.Use(middleware.CORS(deps.Config.Server.CORSOrigins))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(deps.Scheduler)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	if deps.Config.Metrics.Enabled && metricsPath != "" {
		router.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	}

	logsDir := deps.Config.Download.LogsDir
	streamHandler := handlers.NewStreamHandler(deps.Events, logsDir, deps.Logger)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		taskHandler := handlers.NewTaskHandler(deps.Service, deps.Logger)

		tasks := v1.Group("/tasks")
		{
			tasks.POST("", taskHandler.AddTask)
			tasks.DELETE("/:id", taskHandler.CancelTask)
		}

		collections := v1.Group("/collections")
		{
			collections.POST("/resolve", taskHandler.ResolveCollection)
			collections.POST("/enqueue", taskHandler.EnqueueSelection)
		}

		v1.GET("/queue", taskHandler.GetQueue)
		v1.GET("/events", streamHandler.HandleEvents)

		history := v1.Group("/history")
		{
			history.GET("", taskHandler.GetHistory)
			history.GET("/stats", taskHandler.GetHistoryStats)
			history.DELETE("", taskHandler.ClearHistory)
		}

		logHandler := handlers.NewLogHandler(logsDir)
		logs := v1.Group("/logs")
		{
			logs.GET("/categories", logHandler.GetCategories)
			logs.GET("/:category", logHandler.GetLogs)
			logs.GET("/:category/search", logHandler.SearchLogs)
			logs.GET("/:category/export", logHandler.ExportLogs)
			logs.GET("/:category/stream", streamHandler.HandleLogStream)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
