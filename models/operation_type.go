package models

import "time"

// OperationType is a user-defined kind of transfer (e.g. "Card payment").
type OperationType struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    uint   `gorm:"index;not null"`
	Name      string `gorm:"size:255;not null"`
}
