package recording

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
	"github.com/RyanLangman/CM3070-FinalProject/pkg/storage"
)

// UploadTask mirrors one finished segment to off-site storage.
type UploadTask struct {
	LocalPath string
	Key       string
	Retries   int
}

// UploaderConfig holds upload worker settings.
type UploaderConfig struct {
	Workers    int           `mapstructure:"workers"`
	QueueSize  int           `mapstructure:"queue_size"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

// Uploader mirrors finished segments to an off-site bucket with a small
// retrying worker pool. Upload failures never affect local recordings.
type Uploader struct {
	store    storage.Storage
	localDir string
	cfg      UploaderConfig

	queue    chan *UploadTask
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewUploader creates an uploader reading segments from localDir.
func NewUploader(store storage.Storage, localDir string, cfg UploaderConfig) *Uploader {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Uploader{
		store:    store,
		localDir: localDir,
		cfg:      cfg,
		queue:    make(chan *UploadTask, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the upload workers.
func (u *Uploader) Start() {
	for i := 0; i < u.cfg.Workers; i++ {
		u.wg.Add(1)
		go u.worker()
	}
	pkglog.L().Info().Int("workers", u.cfg.Workers).Msg("off-site uploader started")
}

// Stop drains the queue and waits for in-flight uploads.
func (u *Uploader) Stop() {
	u.stopOnce.Do(func() {
		close(u.queue)
		u.wg.Wait()
		u.cancel()
		pkglog.L().Info().Msg("off-site uploader stopped")
	})
}

// EnqueueSegment schedules one segment (path relative to the recordings
// root) for upload. Drops with a warning when the queue is full.
func (u *Uploader) EnqueueSegment(relPath string) {
	task := &UploadTask{
		LocalPath: filepath.Join(u.localDir, relPath),
		Key:       path.Join(u.cfg.KeyPrefix, filepath.ToSlash(relPath)),
	}
	select {
	case u.queue <- task:
	default:
		pkglog.L().Warn().Str("key", task.Key).Msg("upload queue full, segment not mirrored")
	}
}

func (u *Uploader) worker() {
	defer u.wg.Done()
	l := pkglog.L()

	for task := range u.queue {
		var err error
		for task.Retries = 0; task.Retries <= u.cfg.MaxRetries; task.Retries++ {
			if task.Retries > 0 {
				time.Sleep(u.cfg.RetryDelay)
			}
			if err = u.upload(task); err == nil {
				break
			}
			l.Warn().Err(err).Str("key", task.Key).Int("attempt", task.Retries+1).Msg("segment upload failed")
		}
		if err != nil {
			l.Error().Err(err).Str("key", task.Key).Msg("segment upload failed permanently")
			continue
		}
		l.Info().Str("key", task.Key).Msg("segment mirrored off-site")
	}
}

func (u *Uploader) upload(task *UploadTask) error {
	f, err := os.Open(task.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open segment: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat segment: %w", err)
	}

	return u.store.Write(u.ctx, task.Key, f, info.Size(), "video/mp4")
}
