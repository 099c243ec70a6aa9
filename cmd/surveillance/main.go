package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
	"github.com/RyanLangman/CM3070-FinalProject/internal/config"
	"github.com/RyanLangman/CM3070-FinalProject/internal/events"
	"github.com/RyanLangman/CM3070-FinalProject/internal/handler"
	"github.com/RyanLangman/CM3070-FinalProject/internal/monitor"
	"github.com/RyanLangman/CM3070-FinalProject/internal/notify"
	"github.com/RyanLangman/CM3070-FinalProject/internal/recording"
	"github.com/RyanLangman/CM3070-FinalProject/internal/settings"
	"github.com/RyanLangman/CM3070-FinalProject/internal/stream"
	"github.com/RyanLangman/CM3070-FinalProject/internal/vision"
	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/storage"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "surveillance",
	})
	logger := pkglog.L()

	logger.Info().Str("version", version).Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).
		Msg("starting surveillance service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Probe attached cameras
	cameras := camera.AvailableCameras()
	logger.Info().Ints("ids", cameras).Msg("cameras detected")

	// Runtime settings with hot reload
	store, err := settings.NewStore(cfg.Settings.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load settings")
	}
	if err := store.Watch(ctx); err != nil {
		logger.Warn().Err(err).Msg("settings hot reload unavailable")
	}

	// Vision pipeline: face detector plus recognizer trained at startup
	pipeline, err := initVision(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize vision pipeline")
	}

	// Intrusion event log
	eventRepo, err := events.Open(cfg.Events.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open event database")
	}
	logger.Info().Str("path", cfg.Events.DBPath).Msg("event database ready")

	// Segment pipeline: encoder, writer and optional off-site uploader
	uploader := initUploader(ctx, cfg)
	var onFlushed monitor.FlushedFunc
	if uploader != nil {
		onFlushed = uploader.EnqueueSegment
	}
	encoder := monitor.NewFFmpegEncoder(cfg.Recording.FFmpeg)
	writer := monitor.NewSegmentWriter(cfg.Recording.Writer, encoder, onFlushed)
	writer.Start()

	// Notifications
	var snapshots monitor.SnapshotSaver
	var notifier monitor.Notifier
	if cfg.Notifications.Enabled {
		snapshots = notify.NewSnapshotStore(cfg.Notifications.Dir, cfg.Notifications.JPEGQuality)
		notifier = notify.NewMailer(cfg.Notifications.SMTP)
		logger.Info().Str("dir", cfg.Notifications.Dir).Msg("notifications enabled")
	}

	bus := monitor.NewFrameBus()
	open := func(cameraID int) (camera.FrameSource, error) {
		return camera.OpenDevice(cameraID, cfg.Capture.Device)
	}

	registry := monitor.NewSessionRegistry(open, monitor.Deps{
		Bus:              bus,
		Writer:           writer,
		Vision:           pipeline,
		Settings:         store,
		Snapshots:        snapshots,
		Notifier:         notifier,
		Events:           eventRepo,
		FailureThreshold: cfg.Capture.FailureThreshold,
		JPEGQuality:      cfg.Notifications.JPEGQuality,
	})

	// Recordings API over the local segment tree
	localStore, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: cfg.Recording.Writer.Dir})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open recordings directory")
	}
	recordings := recording.NewService(localStore)

	broadcaster := stream.NewBroadcaster(bus, open, func(cameraID int) bool {
		_, ok := registry.State(cameraID)
		return ok
	}, cfg.Stream)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(version)
	monitorHandler := handler.NewMonitorHandler(registry, cameras)
	settingsHandler := handler.NewSettingsHandler(store)
	recordingsHandler := handler.NewRecordingsHandler(recordings)
	eventsHandler := handler.NewEventsHandler(eventRepo)
	previewHandler := handler.NewPreviewHandler(broadcaster)
	liveHandler := handler.NewLiveHandler(broadcaster)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(*logger))

	// Register routes
	healthHandler.RegisterRoutes(r)
	monitorHandler.RegisterRoutes(r)
	settingsHandler.RegisterRoutes(r)
	recordingsHandler.RegisterRoutes(r)
	eventsHandler.RegisterRoutes(r)
	previewHandler.RegisterRoutes(r)
	liveHandler.RegisterRoutes(r)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // Streaming endpoints manage their own deadlines
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("surveillance service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down surveillance service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	// Sessions must drain before the writer stops: draining hands the final
	// partial segments to the writer queue.
	cancel()
	registry.StopAll()
	writer.Stop()
	if uploader != nil {
		uploader.Stop()
	}

	logger.Info().Msg("surveillance service stopped")
}

// initVision loads the face detection cascade and trains the recognizer
// from the reference image directory.
func initVision(cfg *config.Config) (vision.Pipeline, error) {
	l := pkglog.L()

	detector, err := vision.NewFaceDetector(cfg.Vision.CascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load face cascade: %w", err)
	}

	model, err := vision.TrainFromDir(cfg.Vision.ReferenceDir, detector)
	if err != nil {
		l.Warn().Err(err).Str("dir", cfg.Vision.ReferenceDir).
			Msg("recognizer training failed, every face will be treated as unknown")
		model = &vision.Model{}
	} else {
		l.Info().Strs("labels", model.Labels()).Msg("recognizer trained")
	}

	return vision.NewPipeline(detector, model, cfg.Vision), nil
}

// initUploader builds the off-site segment uploader when mirroring is
// enabled. Returns nil when disabled or when the bucket is unreachable.
func initUploader(ctx context.Context, cfg *config.Config) *recording.Uploader {
	l := pkglog.L()
	if !cfg.Offsite.Enabled {
		return nil
	}

	s3Store, err := storage.NewS3Storage(ctx, cfg.Offsite.S3)
	if err != nil {
		l.Warn().Err(err).Msg("off-site storage unavailable, segments stay local only")
		return nil
	}

	uploader := recording.NewUploader(s3Store, cfg.Recording.Writer.Dir, cfg.Offsite.Uploader)
	uploader.Start()
	l.Info().Str("bucket", cfg.Offsite.S3.Bucket).Msg("off-site mirroring enabled")
	return uploader
}
