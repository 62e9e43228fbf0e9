package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// defaultListSpan is how far ahead List looks when no end date is given.
const defaultListSpan = 30

type UnavailabilityInput struct {
	Date      string  `json:"date"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	Reason    string  `json:"reason"`
}

type Unavailability struct {
	repo  Repository
	clock timezone.Clock
	cache Invalidator
	audit *audit.Dispatcher
}

func NewUnavailability(
	repo Repository,
	clock timezone.Clock,
	cache Invalidator,
	audit *audit.Dispatcher,
) *Unavailability {
	return &Unavailability{repo: repo, clock: clock, cache: cache, audit: audit}
}

// List returns blocks dated in [from, to]. Empty bounds default to
// today and defaultListSpan days later.
func (uc *Unavailability) List(
	ctx context.Context,
	actor auth.Actor,
	barberID uint,
	from, to string,
) ([]models.Unavailability, error) {

	if err := authorize(ctx, uc.repo, actor, barberID); err != nil {
		return nil, err
	}

	today := uc.clock.Now()
	if from == "" {
		from = today.Format(availability.DateLayout)
	}
	if to == "" {
		to = today.AddDate(0, 0, defaultListSpan).Format(availability.DateLayout)
	}
	for _, d := range []string{from, to} {
		if _, err := time.Parse(availability.DateLayout, d); err != nil {
			return nil, httperr.ErrBusinessf(httperr.CodeValidation, "dates must be YYYY-MM-DD")
		}
	}
	if to < from {
		return nil, httperr.ErrBusinessf(httperr.CodeValidation, "to before from")
	}

	return uc.repo.ListUnavailability(ctx, barberID, from, to)
}

func (uc *Unavailability) Create(
	ctx context.Context,
	actor auth.Actor,
	barberID uint,
	in UnavailabilityInput,
) (*models.Unavailability, error) {

	if err := authorize(ctx, uc.repo, actor, barberID); err != nil {
		return nil, err
	}

	u := &models.Unavailability{
		BarberID:  barberID,
		Date:      in.Date,
		StartTime: blankToNil(in.StartTime),
		EndTime:   blankToNil(in.EndTime),
		Reason:    in.Reason,
	}
	if _, err := availability.ResolveUnavailability(*u, uc.clock.Loc); err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidSchedule, err.Error())
	}

	if err := uc.repo.CreateUnavailability(ctx, u); err != nil {
		return nil, err
	}

	uc.changed(ctx, actor, barberID, audit.ActionUnavailabilityAdded, u)
	return u, nil
}

func (uc *Unavailability) Delete(ctx context.Context, actor auth.Actor, barberID, id uint) error {
	if err := authorize(ctx, uc.repo, actor, barberID); err != nil {
		return err
	}

	if err := uc.repo.DeleteUnavailability(ctx, barberID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.ErrBusiness(httperr.CodeNotFound)
		}
		return err
	}

	uc.changed(ctx, actor, barberID, audit.ActionUnavailabilityRemove, &models.Unavailability{ID: id})
	return nil
}

func (uc *Unavailability) changed(ctx context.Context, actor auth.Actor, barberID uint, action string, u *models.Unavailability) {
	if uc.cache != nil {
		uc.cache.Invalidate(ctx, barberID)
	}
	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.Ref(),
		Action:   action,
		Entity:   "unavailability",
		EntityID: &u.ID,
		Metadata: map[string]any{"barber_id": barberID, "date": u.Date},
	})
}

func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
