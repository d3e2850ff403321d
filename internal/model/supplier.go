package model

import "time"

// Supplier is read-only reference data for the product form.
type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
