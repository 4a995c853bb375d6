package models

import "time"

// Status is a user-defined label grouping transfers (e.g. "Business", "Personal").
type Status struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:255;not null"`
}
