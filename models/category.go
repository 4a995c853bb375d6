package models

import "time"

// Category groups transfers; each category may have child subcategories.
type Category struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        uint          `gorm:"index;not null"`
	Name          string        `gorm:"size:100;not null"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
