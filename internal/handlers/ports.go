package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/schedule"
)

// ======================================================
// USE CASE PORTS
// ======================================================

type AvailabilityReader interface {
	Execute(ctx context.Context, in appointment.AvailabilityInput) (*availability.Grid, error)
}

type AppointmentCreator interface {
	Execute(ctx context.Context, actor auth.Actor, in appointment.CreateInput) (*models.Appointment, error)
}

type AppointmentCanceller interface {
	Execute(ctx context.Context, actor auth.Actor, id uint) (*models.Appointment, error)
}

type StatusUpdater interface {
	Execute(ctx context.Context, actor auth.Actor, in appointment.UpdateStatusInput) (*models.Appointment, error)
}

type DayLister interface {
	Execute(ctx context.Context, actor auth.Actor, barberID uint, date string) ([]dto.AppointmentListDTO, error)
}

type MonthLister interface {
	Execute(ctx context.Context, actor auth.Actor, barberID uint, year, month int) ([]dto.AppointmentListDTO, error)
}

type CustomerLister interface {
	Execute(ctx context.Context, actor auth.Actor) ([]dto.AppointmentListDTO, error)
}

type WorkingHoursManager interface {
	List(ctx context.Context, actor auth.Actor, barberID uint) ([]models.WorkingHours, error)
	Replace(ctx context.Context, actor auth.Actor, barberID uint, days []schedule.WorkingDay) ([]models.WorkingHours, error)
}

type UnavailabilityManager interface {
	List(ctx context.Context, actor auth.Actor, barberID uint, from, to string) ([]models.Unavailability, error)
	Create(ctx context.Context, actor auth.Actor, barberID uint, in schedule.UnavailabilityInput) (*models.Unavailability, error)
	Delete(ctx context.Context, actor auth.Actor, barberID, id uint) error
}

type Sweeper interface {
	Execute(ctx context.Context) (int, error)
}

// ======================================================
// HELPERS
// ======================================================

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, httperr.CodeValidation, "Invalid "+name+".")
		return 0, false
	}
	return uint(v), true
}

func badRequest(c *gin.Context) {
	httperr.BadRequest(c, httperr.CodeValidation, httperr.Message(httperr.CodeValidation))
}
