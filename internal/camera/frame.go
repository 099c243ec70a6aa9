package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"time"
)

// Frame is a single captured image: a packed RGB pixel buffer plus the
// capture timestamp. Frames are treated as read-only once published to the
// frame bus or appended to a segment batch; anything that draws on a frame
// must work on a Clone.
type Frame struct {
	Pixels    []uint8 // row-major RGB, 3 bytes per pixel
	Width     int
	Height    int
	Timestamp time.Time
}

// Channels is the number of colour channels per pixel.
const Channels = 3

// NewFrame allocates a zeroed frame of the given dimensions.
func NewFrame(width, height int, ts time.Time) *Frame {
	return &Frame{
		Pixels:    make([]uint8, width*height*Channels),
		Width:     width,
		Height:    height,
		Timestamp: ts,
	}
}

// FromImage converts any image.Image into a packed RGB frame.
func FromImage(img image.Image, ts time.Time) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy(), ts)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			f.Pixels[i] = uint8(r >> 8)
			f.Pixels[i+1] = uint8(g >> 8)
			f.Pixels[i+2] = uint8(bl >> 8)
			i += Channels
		}
	}
	return f
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		Pixels:    make([]uint8, len(f.Pixels)),
		Width:     f.Width,
		Height:    f.Height,
		Timestamp: f.Timestamp,
	}
	copy(c.Pixels, f.Pixels)
	return c
}

// ToImage converts the frame into an image.NRGBA for encoding and resizing.
func (f *Frame) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	src := 0
	for y := 0; y < f.Height; y++ {
		dst := img.PixOffset(0, y)
		for x := 0; x < f.Width; x++ {
			img.Pix[dst] = f.Pixels[src]
			img.Pix[dst+1] = f.Pixels[src+1]
			img.Pix[dst+2] = f.Pixels[src+2]
			img.Pix[dst+3] = 0xff
			src += Channels
			dst += 4
		}
	}
	return img
}

// Gray returns the ITU-R 601 luminance plane of the frame.
func (f *Frame) Gray() []uint8 {
	gray := make([]uint8, f.Width*f.Height)
	for i := range gray {
		p := i * Channels
		gray[i] = luminance(f.Pixels[p], f.Pixels[p+1], f.Pixels[p+2])
	}
	return gray
}

// MeanLuminance returns the average brightness of the frame in [0,255].
func (f *Frame) MeanLuminance() float64 {
	if f.Width == 0 || f.Height == 0 {
		return 0
	}
	var sum uint64
	for p := 0; p+2 < len(f.Pixels); p += Channels {
		sum += uint64(luminance(f.Pixels[p], f.Pixels[p+1], f.Pixels[p+2]))
	}
	return float64(sum) / float64(f.Width*f.Height)
}

// SetRGB writes one pixel. Out-of-bounds coordinates are ignored, which keeps
// box-drawing code free of edge checks.
func (f *Frame) SetRGB(x, y int, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	p := (y*f.Width + x) * Channels
	f.Pixels[p] = c.R
	f.Pixels[p+1] = c.G
	f.Pixels[p+2] = c.B
}

// EncodeJPEG encodes the frame as a JPEG with the given quality (1-100).
func (f *Frame) EncodeJPEG(quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.ToImage(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func luminance(r, g, b uint8) uint8 {
	// Integer approximation of 0.299R + 0.587G + 0.114B.
	return uint8((299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000)
}
