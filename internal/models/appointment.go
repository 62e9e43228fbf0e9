package models

import (
	"time"

	"gorm.io/gorm"
)

type Appointment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex;not null" json:"reference"`

	BarberID uint   `gorm:"index;not null" json:"barber_id"`
	Barber   Barber `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	CustomerID *uint `gorm:"index" json:"customer_id"`
	Customer   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	// Walk-in snapshot, kept even when CustomerID is set so the
	// record survives later edits of the customer row.
	CustomerName  string `gorm:"size:100" json:"customer_name"`
	CustomerEmail string `gorm:"size:100" json:"customer_email"`
	CustomerPhone string `gorm:"size:20" json:"customer_phone"`

	SubjectName string `gorm:"size:100" json:"subject_name"`

	ServiceID   uint    `gorm:"index" json:"service_id"`
	ServiceType string  `gorm:"size:100;not null" json:"service_type"`
	Cost        float64 `gorm:"not null" json:"cost"`

	StartTime   time.Time `gorm:"not null;index" json:"start_time"`
	DurationMin int       `gorm:"not null" json:"duration_min"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`

	Status    string `gorm:"size:20;not null;default:'confirmed';index" json:"status"`
	CreatedBy uint   `json:"created_by"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
