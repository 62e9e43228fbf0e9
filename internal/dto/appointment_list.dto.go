package dto

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type AppointmentListDTO struct {
	ID           uint      `json:"id"`
	Reference    string    `json:"reference"`
	BarberID     uint      `json:"barber_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customer_name"`
	SubjectName  string    `json:"subject_name"`
	ServiceName  string    `json:"service_name"`
	Cost         float64   `json:"cost"`
}

func FromAppointment(ap models.Appointment) AppointmentListDTO {
	return AppointmentListDTO{
		ID:           ap.ID,
		Reference:    ap.Reference,
		BarberID:     ap.BarberID,
		StartTime:    ap.StartTime,
		EndTime:      ap.EndTime,
		Status:       ap.Status,
		CustomerName: ap.CustomerName,
		SubjectName:  ap.SubjectName,
		ServiceName:  ap.ServiceType,
		Cost:         ap.Cost,
	}
}

func FromAppointments(aps []models.Appointment) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(aps))
	for _, ap := range aps {
		out = append(out, FromAppointment(ap))
	}
	return out
}
