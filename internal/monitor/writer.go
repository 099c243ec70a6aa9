package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
)

// WriterConfig holds segment writer settings.
type WriterConfig struct {
	// Dir is the recordings root; segments land in Dir/<YYYY-MM-DD>/.
	Dir string `mapstructure:"dir"`
	// Extension of produced segment files, without the dot.
	Extension string `mapstructure:"extension"`
	// Workers is the number of concurrent encode workers, independent of
	// camera count.
	Workers int `mapstructure:"workers"`
	// QueueSize bounds the pending batch queue across all cameras.
	QueueSize int `mapstructure:"queue_size"`
}

// FlushedFunc is invoked after a segment file is written, with the path
// relative to the recordings root. Used to chain off-site upload.
type FlushedFunc func(relPath string)

// SegmentWriter drains segment batches to disk in the background. Recording
// is best-effort: an encode failure is logged and the batch dropped, and the
// queue sheds the oldest batch under sustained backpressure so the capture
// loop never stalls. A batch handed to Enqueue is always accounted for:
// flushed, logged as failed, or logged as dropped.
type SegmentWriter struct {
	cfg       WriterConfig
	encoder   SegmentEncoder
	onFlushed FlushedFunc

	queue    chan *SegmentBatch
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	mu sync.Mutex // serializes enqueue vs drop-oldest
}

// NewSegmentWriter creates a writer; Start must be called before Enqueue.
func NewSegmentWriter(cfg WriterConfig, encoder SegmentEncoder, onFlushed FlushedFunc) *SegmentWriter {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 8
	}
	if cfg.Extension == "" {
		cfg.Extension = "mp4"
	}
	if cfg.Dir == "" {
		cfg.Dir = "recordings"
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &SegmentWriter{
		cfg:       cfg,
		encoder:   encoder,
		onFlushed: onFlushed,
		queue:     make(chan *SegmentBatch, cfg.QueueSize),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start launches the worker pool.
func (w *SegmentWriter) Start() {
	for i := 0; i < w.cfg.Workers; i++ {
		w.wg.Add(1)
		go w.worker()
	}
	pkglog.L().Info().Int("workers", w.cfg.Workers).Str("dir", w.cfg.Dir).Msg("segment writer started")
}

// Stop drains remaining batches and waits for workers to finish.
func (w *SegmentWriter) Stop() {
	w.stopOnce.Do(func() {
		close(w.queue)
		w.wg.Wait()
		w.cancel()
		pkglog.L().Info().Msg("segment writer stopped")
	})
}

// Enqueue hands a batch to the writer, transferring ownership. When the
// queue is full the oldest pending batch is dropped with a warning, keeping
// the handoff non-blocking for the capture loop.
func (w *SegmentWriter) Enqueue(batch *SegmentBatch) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		select {
		case w.queue <- batch:
			return
		default:
		}

		select {
		case oldest, ok := <-w.queue:
			if !ok {
				return
			}
			pkglog.L().Warn().
				Int(pkglog.FieldCameraID, oldest.CameraID).
				Int("frames", oldest.Len()).
				Msg("segment queue full, dropping oldest batch")
			oldest.finish()
		default:
		}
	}
}

func (w *SegmentWriter) worker() {
	defer w.wg.Done()
	for batch := range w.queue {
		w.flush(batch)
	}
}

func (w *SegmentWriter) flush(batch *SegmentBatch) {
	defer batch.finish()

	l := pkglog.L().With().Int(pkglog.FieldCameraID, batch.CameraID).Logger()
	if batch.Len() == 0 {
		return
	}

	ts := batch.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	dateDir := ts.Format("2006-01-02")
	name := fmt.Sprintf("%d_%s.%s", batch.CameraID, ts.Format("20060102150405"), w.cfg.Extension)
	relPath := filepath.Join(dateDir, name)
	absPath := filepath.Join(w.cfg.Dir, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		l.Error().Err(err).Str(pkglog.FieldSegment, relPath).Msg("failed to create recordings directory, batch dropped")
		return
	}

	if err := w.encoder.Encode(w.ctx, absPath, batch); err != nil {
		l.Error().Err(err).Str(pkglog.FieldSegment, relPath).Msg("segment write failed, batch dropped")
		// Remove whatever partial file the encoder left behind.
		os.Remove(absPath)
		return
	}

	l.Info().Str(pkglog.FieldSegment, relPath).Int("frames", batch.Len()).Msg("segment flushed")
	if w.onFlushed != nil {
		w.onFlushed(relPath)
	}
}
