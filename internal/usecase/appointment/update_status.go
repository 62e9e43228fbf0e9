package appointment

import (
	"context"
	"log/slog"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/interval"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

type UpdateStatusInput struct {
	AppointmentID uint
	Status        string
}

// UpdateStatus is the staff transition. It runs under the barber lock
// because moving a cancelled appointment back to a live status claims
// its time range again.
type UpdateStatus struct {
	repo    domain.Repository
	policy  Policy
	effects Effects
	logger  *slog.Logger
}

func NewUpdateStatus(
	repo domain.Repository,
	policy Policy,
	effects Effects,
) *UpdateStatus {
	return &UpdateStatus{
		repo:    repo,
		policy:  policy,
		effects: effects,
		logger:  effects.logger(),
	}
}

func (uc *UpdateStatus) Execute(
	ctx context.Context,
	actor auth.Actor,
	in UpdateStatusInput,
) (*models.Appointment, error) {

	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, notFound(err, httperr.CodeAppointmentNotFound)
	}
	if err := domain.CanStaffTransition(actor, ap, to); err != nil {
		return nil, err
	}

	var (
		updated *models.Appointment
		from    domain.Status
	)

	err = runLocked(ctx, uc.repo, uc.policy, uc.logger, ap.BarberID,
		func(ctx context.Context, tx domain.Repository) error {
			cur, err := tx.GetAppointment(ctx, in.AppointmentID)
			if err != nil {
				return notFound(err, httperr.CodeAppointmentNotFound)
			}
			from = domain.Status(cur.Status)
			updated = cur

			if from == to {
				return nil
			}

			if !from.Occupies() && to.Occupies() {
				if err := uc.checkRevival(ctx, tx, cur); err != nil {
					return err
				}
			}

			domain.Apply(cur, to, uc.policy.Clock.Now())
			return tx.UpdateAppointment(ctx, cur)
		},
	)
	if err != nil {
		return nil, err
	}

	if from == to {
		return updated, nil
	}

	action, template := audit.ActionAppointmentStatus, notify.TemplateAppointmentStatus
	switch to {
	case domain.StatusCancelled:
		action, template = audit.ActionAppointmentCancelled, notify.TemplateAppointmentCancelled
	case domain.StatusCompleted:
		action, template = audit.ActionAppointmentCompleted, notify.TemplateAppointmentCompleted
	}

	uc.effects.appointmentChanged(ctx, uc.repo, actor.Ref(), action, template, updated,
		map[string]any{"from": string(from), "to": string(to)},
	)

	return updated, nil
}

// checkRevival rejects reactivating an appointment whose range has since
// been taken. Working hours are not re-checked; staff may keep an
// appointment that a later schedule change left outside hours.
func (uc *UpdateStatus) checkRevival(ctx context.Context, tx domain.Repository, ap *models.Appointment) error {
	day := timezone.StartOfDay(ap.StartTime.In(uc.policy.loc()))

	apps, err := tx.ListActiveAppointments(ctx, ap.BarberID, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	if err != nil {
		return err
	}

	booked := availability.NewBookedSource(apps, uc.policy.Buffer, uc.policy.loc())
	slot := interval.New(ap.StartTime, time.Duration(ap.DurationMin)*time.Minute)
	if booked.Blocks(slot) {
		return httperr.ErrBusiness(httperr.CodeSlotConflict)
	}
	return nil
}
