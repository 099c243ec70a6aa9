package monitor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// SegmentEncoder serializes a batch of frames into a playable video file.
type SegmentEncoder interface {
	Encode(ctx context.Context, path string, batch *SegmentBatch) error
}

// FFmpegConfig holds encoder settings.
type FFmpegConfig struct {
	Binary string `mapstructure:"binary"`
	Codec  string `mapstructure:"codec"`
	Preset string `mapstructure:"preset"`
	CRF    int    `mapstructure:"crf"`
}

// FFmpegEncoder writes segments by piping raw RGB frames into an ffmpeg
// subprocess.
type FFmpegEncoder struct {
	cfg FFmpegConfig
}

// NewFFmpegEncoder creates an encoder with sane defaults for unset fields.
func NewFFmpegEncoder(cfg FFmpegConfig) *FFmpegEncoder {
	if cfg.Binary == "" {
		cfg.Binary = "ffmpeg"
	}
	if cfg.Codec == "" {
		cfg.Codec = "libx264"
	}
	if cfg.Preset == "" {
		cfg.Preset = "veryfast"
	}
	if cfg.CRF <= 0 {
		cfg.CRF = 23
	}
	return &FFmpegEncoder{cfg: cfg}
}

func (e *FFmpegEncoder) Encode(ctx context.Context, path string, batch *SegmentBatch) error {
	if batch.Len() == 0 {
		return fmt.Errorf("empty batch for camera %d", batch.CameraID)
	}

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", batch.Width, batch.Height),
		"-r", fmt.Sprintf("%d", batch.FrameRate),
		"-i", "pipe:0",
		"-c:v", e.cfg.Codec,
		"-preset", e.cfg.Preset,
		"-crf", fmt.Sprintf("%d", e.cfg.CRF),
		"-pix_fmt", "yuv420p",
		path,
	}

	cmd := exec.CommandContext(ctx, e.cfg.Binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg stdin: %w", err)
	}

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	writeErr := func() error {
		defer stdin.Close()
		for _, f := range batch.Frames() {
			if _, err := stdin.Write(f.Pixels); err != nil {
				return fmt.Errorf("failed to write frame: %w", err)
			}
		}
		return nil
	}()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, lastLine(stderr.String()))
	}
	return writeErr
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

var _ SegmentEncoder = (*FFmpegEncoder)(nil)
