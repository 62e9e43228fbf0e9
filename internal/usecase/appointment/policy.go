package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// Policy holds the booking rules shared by the grid and the transactor.
type Policy struct {
	Clock     timezone.Clock
	Buffer    time.Duration
	TxTimeout time.Duration
	Grid      availability.GridConfig
}

func (p Policy) loc() *time.Location {
	return p.Clock.Loc
}

// GridCache stores computed grids. Implementations must tolerate
// failures silently; the grid is advisory. Grids are keyed by the
// barber version observed before their sources were read, and
// Invalidate moves the barber to a new version.
type GridCache interface {
	Version(ctx context.Context, barberID uint) (int64, bool)
	Get(ctx context.Context, key availability.GridKey) (*availability.Grid, bool)
	Set(ctx context.Context, key availability.GridKey, g availability.Grid)
	Invalidate(ctx context.Context, barberID uint)
}

// Effects are post-commit side effects. Any field may be nil.
type Effects struct {
	Audit  *audit.Dispatcher
	Notify *notify.Dispatcher
	Cache  GridCache
	Logger *slog.Logger
}

func (e Effects) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e Effects) invalidate(ctx context.Context, barberID uint) {
	if e.Cache != nil {
		e.Cache.Invalidate(ctx, barberID)
	}
}

// appointmentChanged fans out audit, notification and cache
// invalidation for one appointment.
func (e Effects) appointmentChanged(
	ctx context.Context,
	repo domain.BarberDirectory,
	actorID *uint,
	action string,
	template string,
	ap *models.Appointment,
	meta map[string]any,
) {
	e.invalidate(ctx, ap.BarberID)

	e.Audit.Dispatch(audit.Event{
		ActorID:  actorID,
		Action:   action,
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: meta,
	})

	if e.Notify == nil {
		return
	}
	barber, err := repo.GetBarber(ctx, ap.BarberID)
	if err != nil {
		e.logger().WarnContext(ctx, "notification skipped, barber lookup failed",
			"appointment_id", ap.ID, "err", err)
		return
	}
	e.Notify.Notify(appointmentMessage(template, ap, barber))
}

func appointmentMessage(template string, ap *models.Appointment, barber *models.Barber) notify.Message {
	recipients := []notify.Recipient{{
		Role:  models.RoleBarber,
		Name:  barber.Name,
		Email: barber.Email,
	}}
	if ap.CustomerEmail != "" || ap.CustomerPhone != "" {
		recipients = append(recipients, notify.Recipient{
			Role:  models.RoleCustomer,
			Name:  ap.CustomerName,
			Email: ap.CustomerEmail,
			Phone: ap.CustomerPhone,
		})
	}

	return notify.Message{
		ID:         uuid.NewString(),
		Template:   template,
		Recipients: recipients,
		Data: map[string]any{
			"reference":    ap.Reference,
			"barber":       barber.Name,
			"service":      ap.ServiceType,
			"subject_name": ap.SubjectName,
			"start_time":   ap.StartTime.Format(time.RFC3339),
			"duration_min": ap.DurationMin,
			"cost":         ap.Cost,
			"status":       ap.Status,
		},
	}
}

// loadSources reads the three availability providers for barberID
// covering the calendar days [from, to).
func loadSources(
	ctx context.Context,
	repo domain.Repository,
	barberID uint,
	from, to time.Time,
	p Policy,
	logger *slog.Logger,
) (availability.Sources, error) {

	whRows, err := repo.ListWorkingHours(ctx, barberID)
	if err != nil {
		return availability.Sources{}, err
	}
	wh, err := availability.NewWorkingHoursSource(whRows)
	if err != nil {
		return availability.Sources{}, fmt.Errorf("barber %d: %w", barberID, err)
	}

	unRows, err := repo.ListUnavailability(
		ctx,
		barberID,
		from.Format(availability.DateLayout),
		to.AddDate(0, 0, -1).Format(availability.DateLayout),
	)
	if err != nil {
		return availability.Sources{}, err
	}
	un, skipped := availability.NewUnavailabilitySource(unRows, p.loc())
	for _, serr := range skipped {
		logger.WarnContext(ctx, "unavailability entry ignored", "barber_id", barberID, "err", serr)
	}

	// One extra day back catches late appointments whose buffer spills
	// past midnight.
	apps, err := repo.ListActiveAppointments(ctx, barberID, from.AddDate(0, 0, -1), to)
	if err != nil {
		return availability.Sources{}, err
	}

	return availability.Sources{
		WorkingHours:   wh,
		Unavailability: un,
		Booked:         availability.NewBookedSource(apps, p.Buffer, p.loc()),
	}, nil
}

const maxLockedAttempts = 2

// runLocked executes fn inside the barber's critical section, bounded by
// the policy timeout and retried once on transient failures. Exclusion
// violations surface as slot_conflict and exhausted retries as
// transient_error.
func runLocked(
	ctx context.Context,
	repo domain.Repository,
	p Policy,
	logger *slog.Logger,
	barberID uint,
	fn func(ctx context.Context, tx domain.Repository) error,
) error {
	var err error
	for attempt := 1; attempt <= maxLockedAttempts; attempt++ {
		err = attemptLocked(ctx, repo, p.TxTimeout, barberID, fn)
		if !httperr.IsTransient(err) || ctx.Err() != nil {
			break
		}
		logger.WarnContext(ctx, "booking transaction retry",
			"barber_id", barberID, "attempt", attempt, "err", err)
	}

	switch {
	case err == nil:
		return nil
	case httperr.IsExclusionConflict(err):
		return httperr.ErrBusiness(httperr.CodeSlotConflict)
	case httperr.IsTransient(err) && httperr.CodeOf(err) == "":
		logger.ErrorContext(ctx, "booking transaction gave up", "barber_id", barberID, "err", err)
		return httperr.ErrBusiness(httperr.CodeTransient)
	}
	return err
}

func attemptLocked(
	ctx context.Context,
	repo domain.Repository,
	timeout time.Duration,
	barberID uint,
	fn func(ctx context.Context, tx domain.Repository) error,
) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return repo.WithBarberLock(ctx, barberID, func(tx domain.Repository) error {
		return fn(ctx, tx)
	})
}

// notFound maps a repository miss onto code and passes other errors on.
func notFound(err error, code string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrBusiness(code)
	}
	return err
}
