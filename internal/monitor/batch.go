package monitor

import (
	"time"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
)

// SegmentBatch accumulates the frames of one video segment. The capture loop
// owns the batch exclusively until it hands it to the segment writer; after
// handoff the writer is the sole owner and the frames are immutable.
type SegmentBatch struct {
	CameraID  int
	FrameRate int
	Width     int
	Height    int
	StartedAt time.Time

	frames   []*camera.Frame
	capacity int

	// done is set by the session before handoff; the writer calls it exactly
	// once after the batch is flushed, failed, or dropped.
	done func()
}

// NewSegmentBatch creates an empty batch sized for frameRate×segmentSeconds
// frames.
func NewSegmentBatch(cameraID, frameRate, segmentSeconds int) *SegmentBatch {
	capacity := frameRate * segmentSeconds
	if capacity < 1 {
		capacity = 1
	}
	return &SegmentBatch{
		CameraID:  cameraID,
		FrameRate: frameRate,
		frames:    make([]*camera.Frame, 0, capacity),
		capacity:  capacity,
	}
}

// Append adds a frame in capture order and reports whether the batch is now
// full. The first frame fixes the batch dimensions and start time.
func (b *SegmentBatch) Append(f *camera.Frame) bool {
	if len(b.frames) == 0 {
		b.Width = f.Width
		b.Height = f.Height
		b.StartedAt = f.Timestamp
	}
	b.frames = append(b.frames, f)
	return len(b.frames) >= b.capacity
}

// Len returns the number of buffered frames.
func (b *SegmentBatch) Len() int {
	return len(b.frames)
}

// Frames returns the buffered frames in capture order.
func (b *SegmentBatch) Frames() []*camera.Frame {
	return b.frames
}

// finish runs the completion callback and releases the frame references.
func (b *SegmentBatch) finish() {
	b.frames = nil
	if b.done != nil {
		b.done()
		b.done = nil
	}
}
