package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type WorkingDay struct {
	Weekday   int    `json:"weekday" binding:"min=1,max=7"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type WorkingHours struct {
	repo  Repository
	cache Invalidator
	audit *audit.Dispatcher
}

func NewWorkingHours(repo Repository, cache Invalidator, audit *audit.Dispatcher) *WorkingHours {
	return &WorkingHours{repo: repo, cache: cache, audit: audit}
}

func (uc *WorkingHours) List(ctx context.Context, actor auth.Actor, barberID uint) ([]models.WorkingHours, error) {
	if err := uc.authorize(ctx, actor, barberID); err != nil {
		return nil, err
	}
	return uc.repo.ListWorkingHours(ctx, barberID)
}

// Replace swaps the whole weekly schedule. Weekdays left out become
// days off.
func (uc *WorkingHours) Replace(
	ctx context.Context,
	actor auth.Actor,
	barberID uint,
	days []WorkingDay,
) ([]models.WorkingHours, error) {

	if err := uc.authorize(ctx, actor, barberID); err != nil {
		return nil, err
	}

	rows := make([]models.WorkingHours, 0, len(days))
	seen := make(map[int]bool, len(days))
	for _, d := range days {
		if seen[d.Weekday] {
			return nil, httperr.ErrBusinessf(httperr.CodeInvalidSchedule, fmt.Sprintf("weekday %d repeated", d.Weekday))
		}
		seen[d.Weekday] = true
		rows = append(rows, models.WorkingHours{
			BarberID:  barberID,
			Weekday:   d.Weekday,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
		})
	}

	if _, err := availability.NewWorkingHoursSource(rows); err != nil {
		return nil, httperr.ErrBusinessf(httperr.CodeInvalidSchedule, err.Error())
	}

	if err := uc.repo.ReplaceWorkingHours(ctx, barberID, rows); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		uc.cache.Invalidate(ctx, barberID)
	}
	uc.audit.Dispatch(audit.Event{
		ActorID:  actor.Ref(),
		Action:   audit.ActionWorkingHoursReplaced,
		Entity:   "barber",
		EntityID: &barberID,
		Metadata: map[string]any{"days": len(rows)},
	})

	return uc.repo.ListWorkingHours(ctx, barberID)
}

func (uc *WorkingHours) authorize(ctx context.Context, actor auth.Actor, barberID uint) error {
	return authorize(ctx, uc.repo, actor, barberID)
}

func authorize(ctx context.Context, repo Repository, actor auth.Actor, barberID uint) error {
	if !actor.CanManageBarber(barberID) {
		return httperr.ErrBusiness(httperr.CodeForbidden)
	}
	if _, err := repo.GetBarber(ctx, barberID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.ErrBusiness(httperr.CodeBarberNotFound)
		}
		return err
	}
	return nil
}
