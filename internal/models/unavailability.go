package models

import (
	"time"

	"gorm.io/gorm"
)

// Unavailability blocks a barber on one date. Missing times stretch
// the block to the start or end of that day.
type Unavailability struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	BarberID uint   `gorm:"index:idx_unavailability_barber_date;not null" json:"barber_id"`
	Date     string `gorm:"size:10;index:idx_unavailability_barber_date;not null" json:"date"`

	StartTime *string `gorm:"size:5" json:"start_time"`
	EndTime   *string `gorm:"size:5" json:"end_time"`
	Reason    string  `gorm:"size:255" json:"reason"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
