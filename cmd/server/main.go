package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/sstube-go/api"
	"github.com/yourusername/sstube-go/api/handlers"
	"github.com/yourusername/sstube-go/internal/app"
	"github.com/yourusername/sstube-go/internal/domain"
	"github.com/yourusername/sstube-go/internal/infrastructure"
	"github.com/yourusername/sstube-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file (default: ./configs, ~/.sstube, /etc/sstube)")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(config, log); err != nil {
		log.Error("Server failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(config *domain.Config, log *zap.Logger) error {
	log.Info("Starting sstube server",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("ytdlp", config.Tools.YTDLPBinary))

	if err := createDirectories(config); err != nil {
		return err
	}

	// Category logs: queue, error and the raw download transcript
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize category logs: %w", err)
	}
	defer multiLog.Close()

	history, err := infrastructure.NewSQLiteHistoryRepository(config.Queue.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	defer history.Close()

	titles := infrastructure.NewTitleCache(config.Cache.TitleCacheSize, config.Cache.TitleCacheTTL)
	builder := infrastructure.NewCommandBuilder(config.Tools.FFmpegLocation)
	resolver := infrastructure.NewCollectionResolver(config.Tools.YTDLPBinary, builder, titles, log)
	supervisor := infrastructure.NewProcessSupervisor(infrastructure.ProcessSupervisorConfig{
		Binary:      config.Tools.YTDLPBinary,
		WaitDelay:   config.Tools.WaitDelay,
		InfoTimeout: config.Tools.InfoTimeout,
	}, builder, titles, multiLog, log)

	bus := app.NewEventBus()
	defer bus.Close()

	scheduler := app.NewQueueScheduler(app.NewTaskQueue(), supervisor, bus, history, &config.Queue, multiLog, log)
	service := app.NewDownloadService(scheduler, resolver, history, config, log)

	notifier := infrastructure.NewNotificationService(&config.Notification, log)
	if config.Notification.Enabled {
		events, unsubscribe := bus.Subscribe()
		defer unsubscribe()
		go func() {
			for event := range events {
				notifier.HandleEvent(event)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start queue scheduler: %w", err)
	}

	router := api.SetupRouter(api.RouterDeps{
		Config:      config,
		Service:     service,
		Scheduler:   scheduler,
		Events:      bus,
		MultiLogger: multiLog,
		Logger:      log,
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal, server failure or auto-exit from the scheduler
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case <-scheduler.WaitForExit():
		log.Info("Queue scheduler triggered auto-exit (queue stayed empty)")
	case runErr = <-serverErr:
		log.Error("HTTP server failed", zap.Error(runErr))
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stopping the scheduler kills an active download
	if scheduler.IsRunning() {
		if err := scheduler.Stop(); err != nil {
			log.Error("Error stopping queue scheduler", zap.Error(err))
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return runErr
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.BaseDir,
		config.Download.LogsDir,
		filepath.Dir(config.Queue.DatabasePath),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
