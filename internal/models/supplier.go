package models

import "time"

// Supplier is referenced weakly from inventory items and transactions:
// deleting a supplier leaves those references in place.
type Supplier struct {
	ID          uint   `gorm:"primaryKey"`
	FarmID      uint   `gorm:"index;not null"`
	Farm        Farm   `gorm:"foreignKey:FarmID"`
	Name        string `gorm:"size:200;not null"`
	ContactName string `gorm:"size:100"`
	Phone       string `gorm:"size:50"`
	Email       string `gorm:"size:100"`
	Notes       string `gorm:"size:500"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
