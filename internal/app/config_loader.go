package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/sstube-go/internal/domain"
)

// LoadConfig loads configuration from file and environment.
// An empty configPath searches ./configs, $HOME/.sstube and /etc/sstube.
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.sstube")
		v.AddConfigPath("/etc/sstube")
	}

	// SSTUBE_QUEUE_TASK_GAP overrides queue.task_gap
	v.SetEnvPrefix("SSTUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// configValues flattens config into viper keys. Durations are rendered as
// strings so that a saved file stays readable.
func configValues(config *domain.Config) map[string]interface{} {
	return map[string]interface{}{
		"server.host":                    config.Server.Host,
		"server.port":                    config.Server.Port,
		"server.cors_origins":            config.Server.CORSOrigins,
		"tools.ytdlp_binary":             config.Tools.YTDLPBinary,
		"tools.ffmpeg_location":          config.Tools.FFmpegLocation,
		"tools.wait_delay":               config.Tools.WaitDelay.String(),
		"tools.info_timeout":             config.Tools.InfoTimeout.String(),
		"download.base_dir":              config.Download.BaseDir,
		"download.logs_dir":              config.Download.LogsDir,
		"download.cookie_file":           config.Download.CookieFile,
		"download.default_video_quality": config.Download.DefaultVideoQuality,
		"download.default_audio_bitrate": config.Download.DefaultAudioBitrate,
		"queue.database_path":            config.Queue.DatabasePath,
		"queue.task_gap":                 config.Queue.TaskGap.String(),
		"queue.check_interval":           config.Queue.CheckInterval.String(),
		"queue.auto_exit_on_empty":       config.Queue.AutoExitOnEmpty,
		"queue.empty_wait_time":          config.Queue.EmptyWaitTime.String(),
		"cache.title_cache_size":         config.Cache.TitleCacheSize,
		"cache.title_cache_ttl":          config.Cache.TitleCacheTTL.String(),
		"notification.enabled":           config.Notification.Enabled,
		"notification.method":            config.Notification.Method,
		"logging.level":                  config.Logging.Level,
		"logging.format":                 config.Logging.Format,
		"logging.output_path":            config.Logging.OutputPath,
		"metrics.enabled":                config.Metrics.Enabled,
		"metrics.path":                   config.Metrics.Path,
	}
}

// setDefaults registers every key so that environment overrides apply even
// when the file omits them
func setDefaults(v *viper.Viper, config *domain.Config) {
	for key, value := range configValues(config) {
		v.SetDefault(key, value)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.BaseDir = expandPath(config.Download.BaseDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Download.CookieFile = expandPath(config.Download.CookieFile)
	config.Queue.DatabasePath = expandPath(config.Queue.DatabasePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Tools.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Download.BaseDir == "" {
		return fmt.Errorf("download base directory not configured")
	}

	if config.Download.LogsDir == "" {
		return fmt.Errorf("logs directory not configured")
	}

	if _, err := domain.ParseVideoQuality(config.Download.DefaultVideoQuality); err != nil {
		return err
	}

	if config.Download.DefaultAudioBitrate <= 0 {
		return fmt.Errorf("default audio bitrate must be positive")
	}

	if config.Queue.DatabasePath == "" {
		return fmt.Errorf("queue database path not configured")
	}

	if config.Queue.TaskGap < 0 {
		return fmt.Errorf("queue task gap cannot be negative")
	}

	if config.Cache.TitleCacheSize < 1 {
		return fmt.Errorf("title cache size must be at least 1")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range configValues(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
