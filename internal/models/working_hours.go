package models

import "time"

// WorkingHours holds one weekday of a barber's recurring schedule.
// Weekday follows ISO numbering: 1 = Monday ... 7 = Sunday.
type WorkingHours struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"uniqueIndex:idx_barber_weekday;not null" json:"barber_id"`
	Weekday  int  `gorm:"uniqueIndex:idx_barber_weekday;not null" json:"weekday"`

	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
