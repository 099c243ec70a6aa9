// Package vision provides the frame analysis pipeline: face detection and
// recognition against a set of reference identities, and low-light
// enhancement. The pipeline never mutates its input frame; annotated output
// is always a copy.
package vision

import (
	"image/color"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
)

// Recognition is the verdict for one detected face.
type Recognition struct {
	// Label is the matched reference identity, or "Intruder" when unknown.
	Label string
	// Confidence is how certain the pipeline is of the verdict, in [0,100].
	// For unknown faces this is the intruder confidence.
	Confidence float64
	// Known is true when the face matched a reference identity.
	Known bool
	// Intruder is true when the face is unknown with confidence above the
	// pipeline's intruder threshold.
	Intruder bool
}

// Result is the outcome of running detection over a frame.
type Result struct {
	// Annotated is a copy of the input with face boxes drawn. It equals the
	// input (same pointer) when no faces were found.
	Annotated *camera.Frame
	// Recognition is the most suspicious verdict in the frame, nil when no
	// face was detected.
	Recognition *Recognition
}

// Pipeline is the analysis capability consumed by camera sessions.
type Pipeline interface {
	// Detect finds and recognises faces. It may be slow; callers own the
	// cadence. The input frame is not modified.
	Detect(frame *camera.Frame) (Result, error)

	// Enhance applies night-vision style enhancement and returns a new frame.
	Enhance(frame *camera.Frame) *camera.Frame
}

// Config holds thresholds for the default pipeline.
type Config struct {
	CascadePath  string `mapstructure:"cascade_path"`
	ReferenceDir string `mapstructure:"reference_dir"`
	// KnownThreshold is the minimum similarity (0-100) for a face to count
	// as a known identity.
	KnownThreshold float64 `mapstructure:"known_threshold"`
	// MinIntruderConfidence gates how certain an unknown verdict must be
	// before it is treated as an intrusion.
	MinIntruderConfidence float64 `mapstructure:"min_intruder_confidence"`
}

type pipeline struct {
	detector *FaceDetector
	model    *Model
	cfg      Config
}

// NewPipeline builds the default pigo-backed pipeline around an immutable
// trained model.
func NewPipeline(detector *FaceDetector, model *Model, cfg Config) Pipeline {
	if cfg.KnownThreshold <= 0 {
		cfg.KnownThreshold = 75
	}
	if cfg.MinIntruderConfidence <= 0 {
		cfg.MinIntruderConfidence = 50
	}
	return &pipeline{detector: detector, model: model, cfg: cfg}
}

var boxColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

func (p *pipeline) Detect(frame *camera.Frame) (Result, error) {
	gray := frame.Gray()
	faces := p.detector.Detect(gray, frame.Height, frame.Width)
	if len(faces) == 0 {
		return Result{Annotated: frame}, nil
	}

	annotated := frame.Clone()
	var worst *Recognition

	for _, face := range faces {
		drawBox(annotated, face)

		label, similarity := p.model.Predict(gray, frame.Width, face)
		rec := Recognition{Label: label, Confidence: similarity, Known: true}
		if label == "" || similarity < p.cfg.KnownThreshold {
			conf := 100 - similarity
			rec = Recognition{
				Label:      "Intruder",
				Confidence: conf,
				Known:      false,
				Intruder:   conf >= p.cfg.MinIntruderConfidence,
			}
		}

		// Keep the most suspicious verdict for the frame.
		if worst == nil || (!rec.Known && worst.Known) ||
			(!rec.Known && !worst.Known && rec.Confidence > worst.Confidence) {
			v := rec
			worst = &v
		}
	}

	return Result{Annotated: annotated, Recognition: worst}, nil
}

func drawBox(f *camera.Frame, d Detection) {
	for x := d.X; x < d.X+d.W; x++ {
		f.SetRGB(x, d.Y, boxColor)
		f.SetRGB(x, d.Y+d.H-1, boxColor)
	}
	for y := d.Y; y < d.Y+d.H; y++ {
		f.SetRGB(d.X, y, boxColor)
		f.SetRGB(d.X+d.W-1, y, boxColor)
	}
}
