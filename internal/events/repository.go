package events

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repository stores and queries intrusion events.
type Repository struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite event database and migrates the schema.
func Open(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open event database: %w", err)
	}
	if err := db.AutoMigrate(&IntrusionEvent{}); err != nil {
		return nil, fmt.Errorf("failed to migrate event schema: %w", err)
	}
	return &Repository{db: db}, nil
}

// NewRepository wraps an existing gorm handle, for tests.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// RecordIntrusion appends one event.
func (r *Repository) RecordIntrusion(ctx context.Context, cameraID int, label string, confidence float64, labeledPath, unlabeledPath string) error {
	ev := IntrusionEvent{
		CameraID:      cameraID,
		Label:         label,
		Confidence:    confidence,
		LabeledPath:   labeledPath,
		UnlabeledPath: unlabeledPath,
	}
	if err := r.db.WithContext(ctx).Create(&ev).Error; err != nil {
		return fmt.Errorf("failed to record intrusion event: %w", err)
	}
	return nil
}

// List returns events newest first, optionally restricted to one calendar
// day (local time).
func (r *Repository) List(ctx context.Context, day *time.Time, limit int) ([]IntrusionEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	q := r.db.WithContext(ctx).Model(&IntrusionEvent{}).Order("created_at DESC").Limit(limit)
	if day != nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		q = q.Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 0, 1))
	}

	var out []IntrusionEvent
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list intrusion events: %w", err)
	}
	return out, nil
}
