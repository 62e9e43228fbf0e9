package appointment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/interval"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
	"github.com/BruksfildServices01/salon-booking/internal/validators"
)

type CreateInput struct {
	BarberID    uint
	ServiceID   uint
	StartTime   string
	SubjectName string

	// Staff bookings name an existing customer or carry a walk-in
	// contact. Customer bookings ignore both.
	CustomerID *uint
	WalkIn     *validators.Contact
}

type CreateAppointment struct {
	repo    domain.Repository
	policy  Policy
	effects Effects
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewCreateAppointment(
	repo domain.Repository,
	policy Policy,
	effects Effects,
) *CreateAppointment {
	return &CreateAppointment{
		repo:    repo,
		policy:  policy,
		effects: effects,
		logger:  effects.logger(),
		tracer:  otel.Tracer("salon-booking/appointment"),
	}
}

// customerRef is who the appointment is for: an existing user or a
// walk-in contact still to be created under the barber lock.
type customerRef struct {
	user   *models.User
	walkIn *validators.Contact
}

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	actor auth.Actor,
	in CreateInput,
) (*models.Appointment, error) {

	ctx, span := uc.tracer.Start(ctx, "appointment.create",
		trace.WithAttributes(
			attribute.Int64("barber.id", int64(in.BarberID)),
			attribute.Int64("service.id", int64(in.ServiceID)),
		),
	)
	defer span.End()

	ap, err := uc.execute(ctx, actor, in)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		if code := httperr.CodeOf(err); code != "" {
			span.SetAttributes(attribute.String("booking.error_code", code))
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("appointment.reference", ap.Reference))
	return ap, nil
}

func (uc *CreateAppointment) execute(
	ctx context.Context,
	actor auth.Actor,
	in CreateInput,
) (*models.Appointment, error) {

	start, err := timezone.ParseLocal(in.StartTime, uc.policy.loc())
	if err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidStartTime, in.StartTime)
	}

	// ======================================================
	// OFFERING
	// ======================================================

	svc, err := uc.repo.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, notFound(err, httperr.CodeServiceNotFound)
	}
	if !svc.Active {
		return nil, httperr.ErrBusiness(httperr.CodeServiceNotFound)
	}
	if svc.DurationMin <= 0 {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidDuration)
	}

	if _, err := uc.repo.GetBarber(ctx, in.BarberID); err != nil {
		return nil, notFound(err, httperr.CodeBarberNotFound)
	}

	offered, err := uc.repo.OffersService(ctx, in.BarberID, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !offered {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidOffering)
	}

	// ======================================================
	// CUSTOMER
	// ======================================================

	who, err := uc.resolveCustomer(ctx, actor, in)
	if err != nil {
		return nil, err
	}

	// ======================================================
	// CHECK + INSERT
	// ======================================================

	duration := time.Duration(svc.DurationMin) * time.Minute
	var created *models.Appointment

	err = runLocked(ctx, uc.repo, uc.policy, uc.logger, in.BarberID,
		func(ctx context.Context, tx domain.Repository) error {
			created = nil

			customer := who.user
			if who.walkIn != nil {
				u, err := createWalkIn(ctx, tx, *who.walkIn)
				if err != nil {
					return err
				}
				customer = u
			}

			slot := interval.New(start, duration)
			if err := uc.checkSlot(ctx, tx, in.BarberID, slot); err != nil {
				return err
			}

			ap := &models.Appointment{
				Reference:     uuid.NewString(),
				BarberID:      in.BarberID,
				CustomerID:    &customer.ID,
				CustomerName:  customer.Name,
				CustomerEmail: customer.Email,
				CustomerPhone: customer.Phone,
				SubjectName:   subjectName(in.SubjectName, customer),
				ServiceID:     svc.ID,
				ServiceType:   svc.Name,
				Cost:          svc.Price,
				StartTime:     slot.Start,
				DurationMin:   svc.DurationMin,
				EndTime:       slot.End,
				Status:        string(domain.InitialStatus()),
				CreatedBy:     actor.UserID,
			}
			if err := tx.CreateAppointment(ctx, ap); err != nil {
				return err
			}
			created = ap
			return nil
		},
	)

	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeSlotConflict) {
			uc.effects.Audit.Dispatch(audit.Event{
				ActorID: actor.Ref(),
				Action:  audit.ActionAppointmentConflict,
				Entity:  "appointment",
				Metadata: map[string]any{
					"barber_id":  in.BarberID,
					"service_id": in.ServiceID,
					"start_time": start.Format(time.RFC3339),
				},
			})
		}
		return nil, err
	}

	uc.effects.appointmentChanged(ctx, uc.repo, actor.Ref(),
		audit.ActionAppointmentCreated,
		notify.TemplateAppointmentCreated,
		created,
		map[string]any{
			"reference":  created.Reference,
			"start_time": created.StartTime.Format(time.RFC3339),
			"walk_in":    who.walkIn != nil,
		},
	)

	return created, nil
}

// checkSlot is the authoritative check. It classifies the slot exactly
// like the grid does, against sources read inside the lock.
func (uc *CreateAppointment) checkSlot(
	ctx context.Context,
	tx domain.Repository,
	barberID uint,
	slot interval.Interval,
) error {
	now := uc.policy.Clock.Now()
	day := timezone.StartOfDay(slot.Start.In(uc.policy.loc()))

	src, err := loadSources(ctx, tx, barberID, day, day.AddDate(0, 0, 1), uc.policy, uc.logger)
	if err != nil {
		return err
	}

	switch availability.Classify(slot, now, src) {
	case availability.SlotPast:
		return httperr.ErrBusiness(httperr.CodeSlotInPast)
	case availability.SlotUnavailable:
		return httperr.ErrBusiness(httperr.CodeSlotUnavailable)
	case availability.SlotBooked:
		return httperr.ErrBusiness(httperr.CodeSlotConflict)
	}
	return nil
}

func (uc *CreateAppointment) resolveCustomer(
	ctx context.Context,
	actor auth.Actor,
	in CreateInput,
) (customerRef, error) {

	switch {
	case actor.IsCustomer():
		if in.CustomerID != nil && *in.CustomerID != actor.UserID {
			return customerRef{}, httperr.ErrBusiness(httperr.CodeForbidden)
		}
		u, err := uc.repo.GetCustomer(ctx, actor.UserID)
		if err != nil {
			return customerRef{}, notFound(err, httperr.CodeCustomerNotFound)
		}
		return customerRef{user: u}, nil

	case actor.IsStaff():
		if !actor.CanManageBarber(in.BarberID) {
			return customerRef{}, httperr.ErrBusiness(httperr.CodeForbidden)
		}
		if in.CustomerID != nil {
			u, err := uc.repo.GetCustomer(ctx, *in.CustomerID)
			if err != nil {
				return customerRef{}, notFound(err, httperr.CodeCustomerNotFound)
			}
			return customerRef{user: u}, nil
		}
		if in.WalkIn == nil {
			return customerRef{}, httperr.ErrBusiness(httperr.CodeMissingContact)
		}
		c := in.WalkIn.Normalize()
		if !c.HasChannel() {
			return customerRef{}, httperr.ErrBusiness(httperr.CodeMissingContact)
		}
		if err := validators.ValidateContact(c); err != nil {
			return customerRef{}, httperr.ErrBusinessf(httperr.CodeInvalidContact, err.Error())
		}
		return customerRef{walkIn: &c}, nil
	}

	return customerRef{}, httperr.ErrBusiness(httperr.CodeForbidden)
}

// createWalkIn rejects contacts already held by a live user.
func createWalkIn(ctx context.Context, tx domain.CustomerDirectory, c validators.Contact) (*models.User, error) {
	_, err := tx.FindByEmailOrPhone(ctx, c.Email, c.Phone)
	switch {
	case err == nil:
		return nil, httperr.ErrBusiness(httperr.CodeDuplicateContact)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return tx.CreateWalkIn(ctx, c.Name, c.Email, c.Phone)
}

func subjectName(name string, customer *models.User) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return customer.Name
}
