package models

import (
	"time"

	"gorm.io/gorm"
)

type Barber struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	UserID  *uint  `gorm:"uniqueIndex" json:"user_id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Email   string `gorm:"size:100" json:"email"`
	Profile string `gorm:"type:text" json:"profile"`

	Services []Service `gorm:"many2many:barber_services;" json:"services,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BarberService is the offering relation between barbers and services.
type BarberService struct {
	BarberID  uint `gorm:"primaryKey"`
	ServiceID uint `gorm:"primaryKey"`
}
