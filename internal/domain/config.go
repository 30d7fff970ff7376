package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Tools        ToolsConfig        `mapstructure:"tools"`
	Download     DownloadConfig     `mapstructure:"download"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"` // empty allows all
}

// ToolsConfig locates the external binaries
type ToolsConfig struct {
	YTDLPBinary    string        `mapstructure:"ytdlp_binary"`
	FFmpegLocation string        `mapstructure:"ffmpeg_location"`
	WaitDelay      time.Duration `mapstructure:"wait_delay"` // grace period for output pipes after a kill
	InfoTimeout    time.Duration `mapstructure:"info_timeout"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	BaseDir             string `mapstructure:"base_dir"`
	LogsDir             string `mapstructure:"logs_dir"`
	CookieFile          string `mapstructure:"cookie_file"`
	DefaultVideoQuality string `mapstructure:"default_video_quality"`
	DefaultAudioBitrate int    `mapstructure:"default_audio_bitrate"`
}

// QueueConfig contains queue-related configuration
type QueueConfig struct {
	DatabasePath    string        `mapstructure:"database_path"`
	TaskGap         time.Duration `mapstructure:"task_gap"`
	CheckInterval   time.Duration `mapstructure:"check_interval"`
	AutoExitOnEmpty bool          `mapstructure:"auto_exit_on_empty"`
	EmptyWaitTime   time.Duration `mapstructure:"empty_wait_time"`
}

// CacheConfig sizes the title cache
type CacheConfig struct {
	TitleCacheSize int           `mapstructure:"title_cache_size"`
	TitleCacheTTL  time.Duration `mapstructure:"title_cache_ttl"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8085,
		},
		Tools: ToolsConfig{
			YTDLPBinary:    "yt-dlp",
			FFmpegLocation: "ffmpeg",
			WaitDelay:      5 * time.Second,
			InfoTimeout:    30 * time.Second,
		},
		Download: DownloadConfig{
			BaseDir:             "$HOME/Downloads/sstube",
			LogsDir:             "$HOME/.sstube/logs",
			CookieFile:          "",
			DefaultVideoQuality: "Best Available",
			DefaultAudioBitrate: DefaultAudioBitrateKbps,
		},
		Queue: QueueConfig{
			DatabasePath:    "$HOME/.sstube/history.db",
			TaskGap:         100 * time.Millisecond,
			CheckInterval:   10 * time.Second,
			AutoExitOnEmpty: false,
			EmptyWaitTime:   5 * time.Minute,
		},
		Cache: CacheConfig{
			TitleCacheSize: 1024,
			TitleCacheTTL:  6 * time.Hour,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
