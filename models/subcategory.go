package models

import "time"

// Subcategory belongs to exactly one category. Its name is unique within that
// category; deleting the category removes its subcategories with it.
type Subcategory struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     uint     `gorm:"index;not null"`
	CategoryID uint     `gorm:"not null;uniqueIndex:idx_subcategory_category_name"`
	Category   Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Name       string   `gorm:"size:100;not null;uniqueIndex:idx_subcategory_category_name"`
}
