package vision

import (
	"fmt"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Detection is one detected face region in frame coordinates.
type Detection struct {
	X, Y, W, H int
	Quality    float32
}

// FaceDetector wraps a pigo cascade classifier.
type FaceDetector struct {
	classifier *pigo.Pigo
	minQuality float32
}

// NewFaceDetector loads a pigo cascade file (the stock "facefinder" cascade).
func NewFaceDetector(cascadePath string) (*FaceDetector, error) {
	data, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	return &FaceDetector{classifier: classifier, minQuality: 5.0}, nil
}

// Detect runs the cascade over a grayscale plane of rows x cols pixels and
// returns clustered detections above the quality floor.
func (d *FaceDetector) Detect(gray []uint8, rows, cols int) []Detection {
	minSize := rows / 10
	if minSize < 20 {
		minSize = 20
	}

	params := pigo.CascadeParams{
		MinSize:     minSize,
		MaxSize:     rows,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: gray,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	out := make([]Detection, 0, len(dets))
	for _, det := range dets {
		if det.Q < d.minQuality {
			continue
		}
		half := det.Scale / 2
		out = append(out, Detection{
			X:       det.Col - half,
			Y:       det.Row - half,
			W:       det.Scale,
			H:       det.Scale,
			Quality: det.Q,
		})
	}
	return out
}
