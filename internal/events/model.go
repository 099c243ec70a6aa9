// Package events keeps the persistent intrusion event log in SQLite.
package events

import "time"

// IntrusionEvent is one recorded intrusion verdict.
type IntrusionEvent struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	CameraID      int       `gorm:"index" json:"camera_id"`
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"`
	LabeledPath   string    `json:"labeled_path"`
	UnlabeledPath string    `json:"unlabeled_path"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps the table name stable.
func (IntrusionEvent) TableName() string {
	return "intrusion_events"
}
