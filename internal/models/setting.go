package models

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is one persisted key→JSON configuration value.
type Setting struct {
	Key       string         `gorm:"primaryKey;size:128"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}
