package vision

import (
	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
)

// DarknessThreshold is the mean luminance (0-255) below which a frame is
// considered dark enough to enhance.
const DarknessThreshold = 30.0

// IsDark reports whether a frame qualifies for night-vision enhancement.
func IsDark(f *camera.Frame) bool {
	return f.MeanLuminance() < DarknessThreshold
}

// Enhance brightens a dark frame by equalizing its luminance histogram and
// scaling each pixel's channels by the luminance gain. Frames that are not
// dark pass through unchanged.
func (p *pipeline) Enhance(f *camera.Frame) *camera.Frame {
	if !IsDark(f) {
		return f
	}

	gray := f.Gray()

	// Build the cumulative distribution of the luminance plane.
	var histo [256]int
	for _, v := range gray {
		histo[v]++
	}

	total := len(gray)
	var lut [256]uint8
	cum := 0
	for i := 0; i < 256; i++ {
		cum += histo[i]
		lut[i] = uint8(cum * 255 / total)
	}

	out := camera.NewFrame(f.Width, f.Height, f.Timestamp)
	for i, v := range gray {
		p := i * camera.Channels
		gain := 1.0
		if v > 0 {
			gain = float64(lut[v]) / float64(v)
		}
		out.Pixels[p] = scale(f.Pixels[p], gain)
		out.Pixels[p+1] = scale(f.Pixels[p+1], gain)
		out.Pixels[p+2] = scale(f.Pixels[p+2], gain)
	}
	return out
}

func scale(v uint8, gain float64) uint8 {
	s := float64(v) * gain
	if s > 255 {
		return 255
	}
	return uint8(s)
}
