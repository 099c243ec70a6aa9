package camera

import (
	"fmt"
	"sync"
	"time"

	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/driver"
	_ "github.com/pion/mediadevices/pkg/driver/camera" // register camera driver
	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pion/mediadevices/pkg/io/video"
	"github.com/pion/mediadevices/pkg/prop"
)

// DeviceConfig holds capture parameters for physical cameras.
type DeviceConfig struct {
	Width     int `mapstructure:"width"`
	Height    int `mapstructure:"height"`
	FrameRate int `mapstructure:"frame_rate"`
}

// DeviceSource reads frames from a physical camera through pion/mediadevices.
type DeviceSource struct {
	cameraID  int
	track     *mediadevices.VideoTrack
	reader    video.Reader
	frameRate int
	width     int
	height    int

	mu     sync.Mutex
	closed bool
}

// OpenDevice opens the cameraID-th video input device.
func OpenDevice(cameraID int, cfg DeviceConfig) (*DeviceSource, error) {
	devices := videoInputs()
	if cameraID < 0 || cameraID >= len(devices) {
		return nil, &CaptureError{CameraID: cameraID, Err: fmt.Errorf("no such device (found %d)", len(devices))}
	}
	deviceID := devices[cameraID].DeviceID

	stream, err := mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
		Video: func(c *mediadevices.MediaTrackConstraints) {
			c.DeviceID = prop.String(deviceID)
			if cfg.Width > 0 {
				c.Width = prop.Int(cfg.Width)
			}
			if cfg.Height > 0 {
				c.Height = prop.Int(cfg.Height)
			}
			if cfg.FrameRate > 0 {
				c.FrameRate = prop.Float(float64(cfg.FrameRate))
			}
			c.FrameFormat = prop.FrameFormat(frame.FormatI420)
		},
	})
	if err != nil {
		return nil, &CaptureError{CameraID: cameraID, Err: fmt.Errorf("failed to open device %s: %w", deviceID, err)}
	}

	tracks := stream.GetVideoTracks()
	if len(tracks) == 0 {
		return nil, &CaptureError{CameraID: cameraID, Err: fmt.Errorf("device %s has no video track", deviceID)}
	}

	track, ok := tracks[0].(*mediadevices.VideoTrack)
	if !ok {
		tracks[0].Close()
		return nil, &CaptureError{CameraID: cameraID, Err: fmt.Errorf("device %s: unexpected track type", deviceID)}
	}

	s := &DeviceSource{
		cameraID:  cameraID,
		track:     track,
		reader:    track.NewReader(false),
		frameRate: cfg.FrameRate,
		width:     cfg.Width,
		height:    cfg.Height,
	}
	if s.frameRate <= 0 {
		s.frameRate = 30
	}
	return s, nil
}

func (s *DeviceSource) Read() (*Frame, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSourceClosed
	}
	s.mu.Unlock()

	img, release, err := s.reader.Read()
	if err != nil {
		return nil, &CaptureError{CameraID: s.cameraID, Err: err}
	}
	defer release()

	f := FromImage(img, time.Now())
	s.mu.Lock()
	s.width, s.height = f.Width, f.Height
	s.mu.Unlock()
	return f, nil
}

func (s *DeviceSource) FrameRate() int {
	return s.frameRate
}

func (s *DeviceSource) Bounds() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *DeviceSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.track.Close()
}

// AvailableCameras probes for attached video input devices and returns their
// ids (indices into the enumeration order).
func AvailableCameras() []int {
	devices := videoInputs()
	ids := make([]int, 0, len(devices))
	for i := range devices {
		ids = append(ids, i)
	}
	return ids
}

func videoInputs() []mediadevices.MediaDeviceInfo {
	var inputs []mediadevices.MediaDeviceInfo
	for _, d := range mediadevices.EnumerateDevices() {
		if d.Kind == mediadevices.VideoInput && d.DeviceType == driver.Camera {
			inputs = append(inputs, d)
		}
	}
	return inputs
}

var _ FrameSource = (*DeviceSource)(nil)
