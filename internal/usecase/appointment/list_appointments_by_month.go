package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

type ListAppointmentsByMonth struct {
	repo   domain.Repository
	policy Policy
}

func NewListAppointmentsByMonth(
	repo domain.Repository,
	policy Policy,
) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{
		repo:   repo,
		policy: policy,
	}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	actor auth.Actor,
	barberID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if !actor.CanManageBarber(barberID) {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}
	if year < 1970 || month < 1 || month > 12 {
		return nil, httperr.ErrBusinessf(httperr.CodeValidation, "invalid year or month")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, uc.policy.loc())
	end := start.AddDate(0, 1, 0)

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
