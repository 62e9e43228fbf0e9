package appointment

import (
	"context"
	"log/slog"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
)

type CancelAppointment struct {
	repo    domain.Repository
	policy  Policy
	effects Effects
	logger  *slog.Logger
}

func NewCancelAppointment(
	repo domain.Repository,
	policy Policy,
	effects Effects,
) *CancelAppointment {
	return &CancelAppointment{
		repo:    repo,
		policy:  policy,
		effects: effects,
		logger:  effects.logger(),
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	actor auth.Actor,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, notFound(err, httperr.CodeAppointmentNotFound)
	}
	if err := uc.authorize(actor, ap); err != nil {
		return nil, err
	}

	var (
		cancelled *models.Appointment
		from      string
	)

	// Checked again on the locked row so a concurrent transition is
	// never overwritten.
	err = runLocked(ctx, uc.repo, uc.policy, uc.logger, ap.BarberID,
		func(ctx context.Context, tx domain.Repository) error {
			cur, err := tx.GetAppointment(ctx, appointmentID)
			if err != nil {
				return notFound(err, httperr.CodeAppointmentNotFound)
			}
			if err := uc.authorize(actor, cur); err != nil {
				return err
			}

			from = cur.Status
			domain.Apply(cur, domain.StatusCancelled, uc.policy.Clock.Now())
			if err := tx.UpdateAppointment(ctx, cur); err != nil {
				return err
			}
			cancelled = cur
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	uc.effects.appointmentChanged(ctx, uc.repo, actor.Ref(),
		audit.ActionAppointmentCancelled,
		notify.TemplateAppointmentCancelled,
		cancelled,
		map[string]any{"from": from, "by": actor.Role},
	)

	return cancelled, nil
}

func (uc *CancelAppointment) authorize(actor auth.Actor, ap *models.Appointment) error {
	if actor.IsCustomer() {
		return domain.CanCustomerCancel(actor, ap, uc.policy.Clock.Now(), uc.policy.loc())
	}
	if err := domain.CanStaffTransition(actor, ap, domain.StatusCancelled); err != nil {
		return err
	}
	if domain.Status(ap.Status) == domain.StatusCancelled {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	return nil
}
