// Package recording exposes finished video segments: listing by date,
// streaming and deletion, plus optional off-site mirroring.
package recording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/RyanLangman/CM3070-FinalProject/pkg/storage"
)

// ErrNotFound is returned when a recording does not exist.
var ErrNotFound = errors.New("recording not found")

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	namePattern = regexp.MustCompile(`^[\w.-]+$`)
)

// Service manages the recordings tree, one date directory per day with
// segment files named <camera_id>_<timestamp>.<ext>.
type Service struct {
	store storage.Storage
}

// NewService creates a recordings service over the given storage backend.
func NewService(store storage.Storage) *Service {
	return &Service{store: store}
}

// List returns all recordings grouped by date folder, dates and filenames
// sorted ascending.
func (s *Service) List(ctx context.Context) (map[string][]string, error) {
	files, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}

	byDate := make(map[string][]string)
	for _, f := range files {
		date, name := path.Split(strings.ReplaceAll(f.Key, "\\", "/"))
		date = strings.Trim(date, "/")
		if !datePattern.MatchString(date) || name == "" {
			continue
		}
		byDate[date] = append(byDate[date], name)
	}
	for _, names := range byDate {
		sort.Strings(names)
	}
	return byDate, nil
}

// Open returns a reader over one recording's bytes.
func (s *Service) Open(ctx context.Context, date, name string) (io.ReadCloser, error) {
	key, err := s.key(date, name)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to stat recording: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	return s.store.Read(ctx, key)
}

// Delete removes one recording.
func (s *Service) Delete(ctx context.Context, date, name string) error {
	key, err := s.key(date, name)
	if err != nil {
		return err
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to stat recording: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return s.store.Delete(ctx, key)
}

// key validates the date/name pair and maps it to a storage key. Rejecting
// anything outside the expected shapes also blocks path traversal.
func (s *Service) key(date, name string) (string, error) {
	if !datePattern.MatchString(date) {
		return "", fmt.Errorf("%w: invalid date %q", ErrNotFound, date)
	}
	if !namePattern.MatchString(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	return path.Join(date, name), nil
}
