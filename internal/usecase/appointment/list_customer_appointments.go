package appointment

import (
	"context"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// ListCustomerAppointments returns the caller's appointments from the
// start of today onward.
type ListCustomerAppointments struct {
	repo   domain.Repository
	policy Policy
}

func NewListCustomerAppointments(
	repo domain.Repository,
	policy Policy,
) *ListCustomerAppointments {
	return &ListCustomerAppointments{
		repo:   repo,
		policy: policy,
	}
}

func (uc *ListCustomerAppointments) Execute(
	ctx context.Context,
	actor auth.Actor,
) ([]dto.AppointmentListDTO, error) {

	if !actor.IsCustomer() {
		return nil, httperr.ErrBusiness(httperr.CodeForbidden)
	}

	from := timezone.StartOfDay(uc.policy.Clock.Now())
	appointments, err := uc.repo.ListCustomerAppointments(ctx, actor.UserID, from)
	if err != nil {
		return nil, err
	}
	return dto.FromAppointments(appointments), nil
}
