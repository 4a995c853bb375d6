package models

import "time"

// Transfer is one recorded money movement. CreatedAt is stamped by the server at
// creation and never updated afterwards. The four lookup references are protected:
// a status, type, category or subcategory still pointed to by a transfer cannot be
// deleted.
type Transfer struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        uint          `gorm:"index;not null"`
	StatusID      uint          `gorm:"index;not null"`
	Status        Status        `gorm:"foreignKey:StatusID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	TypeID        uint          `gorm:"index;not null"`
	Type          OperationType `gorm:"foreignKey:TypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CategoryID    *uint         `gorm:"index"`
	Category      *Category     `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	SubcategoryID *uint         `gorm:"index"`
	Subcategory   *Subcategory  `gorm:"foreignKey:SubcategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Amount        int64         `gorm:"not null"` // whole currency units, may be negative
	Comment       string        `gorm:"size:255"`
}
