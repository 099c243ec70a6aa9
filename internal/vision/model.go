package vision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
)

const histogramBins = 64

type reference struct {
	label string
	hist  [histogramBins]float64
}

// Model holds the reference identities the recognizer matches against.
// It is built once at startup by TrainFromDir and read-only afterwards, so
// concurrent sessions can share one handle.
type Model struct {
	refs []reference
}

// Labels returns the distinct identities the model was trained on.
func (m *Model) Labels() []string {
	seen := map[string]bool{}
	var labels []string
	for _, r := range m.refs {
		if !seen[r.label] {
			seen[r.label] = true
			labels = append(labels, r.label)
		}
	}
	return labels
}

// Empty reports whether the model has no reference faces. An empty model
// classifies every face as unknown.
func (m *Model) Empty() bool {
	return len(m.refs) == 0
}

// TrainFromDir scans dir for reference images laid out as
// <dir>/<label>/<image>.{jpg,png}, detects the face in each image and stores
// its descriptor under the label.
func TrainFromDir(dir string, detector *FaceDetector) (*Model, error) {
	l := pkglog.L()
	model := &Model{}

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isImageFile(path) {
			return nil
		}

		label := filepath.Base(filepath.Dir(path))
		img, err := imaging.Open(path)
		if err != nil {
			l.Warn().Err(err).Str("path", path).Msg("skipping unreadable reference image")
			return nil
		}

		frame := camera.FromImage(img, time.Time{})
		gray := frame.Gray()
		faces := detector.Detect(gray, frame.Height, frame.Width)
		if len(faces) == 0 {
			l.Warn().Str("path", path).Msg("no face found in reference image")
			return nil
		}

		for _, face := range faces {
			model.refs = append(model.refs, reference{
				label: label,
				hist:  faceHistogram(gray, frame.Width, face),
			})
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			l.Warn().Str("dir", dir).Msg("reference image directory missing, recognizer untrained")
			return model, nil
		}
		return nil, fmt.Errorf("failed to scan reference images: %w", err)
	}

	if model.Empty() {
		l.Warn().Str("dir", dir).Msg("insufficient data for training")
	} else {
		l.Info().Int("references", len(model.refs)).Strs("labels", model.Labels()).Msg("face recognizer trained")
	}
	return model, nil
}

// Predict matches the face region against the reference set and returns the
// best label with a similarity score in [0,100]. An empty model returns
// ("", 0).
func (m *Model) Predict(gray []uint8, cols int, face Detection) (string, float64) {
	if m.Empty() {
		return "", 0
	}

	hist := faceHistogram(gray, cols, face)

	bestLabel := ""
	bestSim := -1.0
	for _, ref := range m.refs {
		sim := intersection(hist, ref.hist)
		if sim > bestSim {
			bestSim = sim
			bestLabel = ref.label
		}
	}
	return bestLabel, bestSim * 100
}

// faceHistogram computes a normalized intensity histogram of the face region.
func faceHistogram(gray []uint8, cols int, face Detection) [histogramBins]float64 {
	var hist [histogramBins]float64
	rows := len(gray) / cols

	count := 0
	for y := face.Y; y < face.Y+face.H; y++ {
		if y < 0 || y >= rows {
			continue
		}
		for x := face.X; x < face.X+face.W; x++ {
			if x < 0 || x >= cols {
				continue
			}
			hist[int(gray[y*cols+x])*histogramBins/256]++
			count++
		}
	}

	if count > 0 {
		for i := range hist {
			hist[i] /= float64(count)
		}
	}
	return hist
}

// intersection is the histogram intersection similarity in [0,1].
func intersection(a, b [histogramBins]float64) float64 {
	sum := 0.0
	for i := range a {
		if a[i] < b[i] {
			sum += a[i]
		} else {
			sum += b[i]
		}
	}
	return sum
}

func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
