package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	pkglog "github.com/RyanLangman/CM3070-FinalProject/pkg/log"
)

// Store is the file-backed settings store. Reads return the cached snapshot;
// the file is the source of truth and external edits are picked up by Watch.
type Store struct {
	path string

	mu      sync.RWMutex
	current Settings
}

// NewStore loads settings from path, writing defaults when the file does not
// exist yet.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		s.current = Default()
		if err := s.save(s.current); err != nil {
			return nil, err
		}
		return s, nil
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	s.current = loaded.normalize()
	return s, nil
}

// Current returns the latest settings snapshot.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update persists the given settings and makes them the current snapshot.
func (s *Store) Update(next Settings) error {
	next = next.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(next); err != nil {
		return err
	}
	s.current = next
	return nil
}

// ToggleNightVision flips the night vision flag and returns the new value.
func (s *Store) ToggleNightVision() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	next.NightVisionEnabled = !next.NightVisionEnabled
	if err := s.save(next); err != nil {
		return s.current.NightVisionEnabled, err
	}
	s.current = next
	return next.NightVisionEnabled, nil
}

// ToggleFacialRecognition flips the facial recognition flag and returns the
// new value.
func (s *Store) ToggleFacialRecognition() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	next.FacialRecognitionEnabled = !next.FacialRecognitionEnabled
	if err := s.save(next); err != nil {
		return s.current.FacialRecognitionEnabled, err
	}
	s.current = next
	return next.FacialRecognitionEnabled, nil
}

// Watch reloads the snapshot whenever the settings file changes on disk,
// until ctx is cancelled. External edits (or another process) become visible
// to running sessions on their next loop iteration.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}

	// Watch the directory: editors and atomic writers replace the file,
	// which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch settings directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		l := pkglog.L()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if err := s.reload(); err != nil {
					l.Warn().Err(err).Msg("failed to reload settings")
				} else {
					l.Info().Msg("settings reloaded from disk")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.Warn().Err(err).Msg("settings watcher error")
			}
		}
	}()
	return nil
}

func (s *Store) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	s.mu.Lock()
	s.current = loaded.normalize()
	s.mu.Unlock()
	return nil
}

// save writes without taking the mutex; callers hold it.
func (s *Store) save(v Settings) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
