package camera

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromImageRoundTrip(t *testing.T) {
	// Fully opaque source: ToImage always emits alpha 0xff.
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			src.Set(x, y, color.NRGBA{A: 255})
		}
	}
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{G: 255, A: 255})
	src.Set(2, 1, color.NRGBA{B: 255, A: 255})

	ts := time.Now()
	f := FromImage(src, ts)

	require.Equal(t, 3, f.Width)
	require.Equal(t, 2, f.Height)
	assert.Equal(t, ts, f.Timestamp)
	assert.Equal(t, uint8(255), f.Pixels[0], "red channel of (0,0)")
	assert.Equal(t, uint8(255), f.Pixels[Channels+1], "green channel of (1,0)")

	back := f.ToImage()
	assert.Equal(t, src.Pix, back.Pix)
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewFrame(2, 2, time.Now())
	f.Pixels[0] = 100

	c := f.Clone()
	c.Pixels[0] = 200

	assert.Equal(t, uint8(100), f.Pixels[0], "mutating a clone must not touch the original")
	assert.Equal(t, f.Width, c.Width)
	assert.Equal(t, f.Timestamp, c.Timestamp)
}

func TestSetRGB(t *testing.T) {
	f := NewFrame(4, 4, time.Now())
	f.SetRGB(1, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	i := (2*4 + 1) * Channels
	assert.Equal(t, uint8(10), f.Pixels[i])
	assert.Equal(t, uint8(20), f.Pixels[i+1])
	assert.Equal(t, uint8(30), f.Pixels[i+2])

	// Out-of-bounds writes are ignored.
	f.SetRGB(-1, 0, color.RGBA{})
	f.SetRGB(4, 4, color.RGBA{})
}

func TestMeanLuminance(t *testing.T) {
	black := NewFrame(4, 4, time.Now())
	assert.Zero(t, black.MeanLuminance())

	white := NewFrame(4, 4, time.Now())
	for i := range white.Pixels {
		white.Pixels[i] = 255
	}
	assert.InDelta(t, 254, white.MeanLuminance(), 1)
}

func TestGrayPlaneSize(t *testing.T) {
	f := NewFrame(6, 4, time.Now())
	assert.Len(t, f.Gray(), 24)
}

func TestEncodeJPEG(t *testing.T) {
	f := NewFrame(8, 8, time.Now())
	data, err := f.EncodeJPEG(85)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// JPEG SOI marker.
	assert.Equal(t, []byte{0xff, 0xd8}, data[:2])
}
