package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
)

// SnapshotStore persists intrusion snapshot pairs under
// <dir>/<YYYY-MM-DD>/<timestamp>_{labeled,unlabeled}.jpg.
type SnapshotStore struct {
	dir     string
	quality int
}

// NewSnapshotStore creates a store rooted at dir.
func NewSnapshotStore(dir string, jpegQuality int) *SnapshotStore {
	if jpegQuality <= 0 {
		jpegQuality = 85
	}
	return &SnapshotStore{dir: dir, quality: jpegQuality}
}

// SaveIntrusion writes the unaltered frame and its annotated copy, returning
// the two file paths.
func (s *SnapshotStore) SaveIntrusion(raw, labeled *camera.Frame, ts time.Time) (string, string, error) {
	dateDir := filepath.Join(s.dir, ts.Format("2006-01-02"))
	if err := os.MkdirAll(dateDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	stamp := ts.Format("2006-01-02_15-04-05")
	labeledPath := filepath.Join(dateDir, stamp+"_labeled.jpg")
	unlabeledPath := filepath.Join(dateDir, stamp+"_unlabeled.jpg")

	if err := s.writeJPEG(labeledPath, labeled); err != nil {
		return "", "", err
	}
	if err := s.writeJPEG(unlabeledPath, raw); err != nil {
		return "", "", err
	}
	return labeledPath, unlabeledPath, nil
}

func (s *SnapshotStore) writeJPEG(path string, f *camera.Frame) error {
	data, err := f.EncodeJPEG(s.quality)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}
	return nil
}
