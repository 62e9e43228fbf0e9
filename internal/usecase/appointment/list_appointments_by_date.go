package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

type ListAppointmentsByDate struct {
	repo   domain.Repository
	policy Policy
}

func NewListAppointmentsByDate(
	repo domain.Repository,
	policy Policy,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo:   repo,
		policy: policy,
	}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	actor auth.Actor,
	barberID uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	if !actor.CanManageBarber(barberID) {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}

	start, err := time.ParseInLocation(availability.DateLayout, date, uc.policy.loc())
	if err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeValidation, "date must be YYYY-MM-DD")
	}
	end := start.AddDate(0, 0, 1)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		barberID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	return dto.FromAppointments(appointments), nil
}
