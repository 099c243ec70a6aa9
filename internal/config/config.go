package config

import (
	"fmt"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
	"github.com/RyanLangman/CM3070-FinalProject/internal/monitor"
	"github.com/RyanLangman/CM3070-FinalProject/internal/notify"
	"github.com/RyanLangman/CM3070-FinalProject/internal/recording"
	"github.com/RyanLangman/CM3070-FinalProject/internal/stream"
	"github.com/RyanLangman/CM3070-FinalProject/internal/vision"
	pkgconfig "github.com/RyanLangman/CM3070-FinalProject/pkg/config"
	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/storage"
)

// Config is the full application configuration, loaded from config.yaml and
// environment variables.
type Config struct {
	Server        ServerConfig          `mapstructure:"server"`
	Log           pkglog.Config         `mapstructure:"log"`
	Capture       CaptureConfig         `mapstructure:"capture"`
	Recording     RecordingConfig       `mapstructure:"recording"`
	Notifications NotificationsConfig   `mapstructure:"notifications"`
	Vision        vision.Config         `mapstructure:"vision"`
	Settings      SettingsConfig        `mapstructure:"settings"`
	Stream        stream.Config         `mapstructure:"stream"`
	Events        EventsConfig          `mapstructure:"events"`
	Offsite       OffsiteConfig         `mapstructure:"offsite"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type CaptureConfig struct {
	Device           camera.DeviceConfig `mapstructure:"device"`
	FailureThreshold int                 `mapstructure:"failure_threshold"`
}

type RecordingConfig struct {
	Writer monitor.WriterConfig `mapstructure:"writer"`
	FFmpeg monitor.FFmpegConfig `mapstructure:"ffmpeg"`
}

type NotificationsConfig struct {
	Enabled     bool              `mapstructure:"enabled"`
	Dir         string            `mapstructure:"dir"`
	JPEGQuality int               `mapstructure:"jpeg_quality"`
	SMTP        notify.SMTPConfig `mapstructure:"smtp"`
}

type SettingsConfig struct {
	Path string `mapstructure:"path"`
}

type EventsConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type OffsiteConfig struct {
	Enabled  bool                     `mapstructure:"enabled"`
	S3       storage.S3Config         `mapstructure:"s3"`
	Uploader recording.UploaderConfig `mapstructure:"uploader"`
}

// Load reads configuration from ./config.yaml (or ./config/config.yaml) and
// the environment.
func Load() (*Config, error) {
	v, err := pkgconfig.Load(".", "config")
	if err != nil {
		return nil, err
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "surveillance")
	v.SetDefault("capture.device.width", 1280)
	v.SetDefault("capture.device.height", 720)
	v.SetDefault("capture.device.frame_rate", 30)
	v.SetDefault("capture.failure_threshold", 30)
	v.SetDefault("recording.writer.dir", "recordings")
	v.SetDefault("recording.writer.extension", "mp4")
	v.SetDefault("recording.writer.workers", 1)
	v.SetDefault("recording.writer.queue_size", 8)
	v.SetDefault("notifications.dir", "notifications")
	v.SetDefault("notifications.jpeg_quality", 85)
	v.SetDefault("vision.cascade_path", "facefinder")
	v.SetDefault("vision.reference_dir", "reference_images")
	v.SetDefault("settings.path", "settings.json")
	v.SetDefault("stream.poll_interval", "50ms")
	v.SetDefault("stream.width", 640)
	v.SetDefault("stream.jpeg_quality", 75)
	v.SetDefault("events.db_path", "surveillance.db")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
