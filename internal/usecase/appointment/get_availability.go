package appointment

import (
	"context"
	"log/slog"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

type AvailabilityInput struct {
	BarberID   uint
	ServiceID  uint
	WeekOffset int
}

type GetAvailability struct {
	repo   domain.Repository
	policy Policy
	cache  GridCache
	logger *slog.Logger
}

func NewGetAvailability(
	repo domain.Repository,
	policy Policy,
	effects Effects,
) *GetAvailability {
	return &GetAvailability{
		repo:   repo,
		policy: policy,
		cache:  effects.Cache,
		logger: effects.logger(),
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) (*availability.Grid, error) {

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

	now := uc.policy.Clock.Now()
	weekStart := availability.WeekStart(now, in.WeekOffset)

	key := availability.GridKey{
		BarberID:  in.BarberID,
		ServiceID: in.ServiceID,
		WeekStart: weekStart.Format(availability.DateLayout),
	}

	// The version is read before the sources so a write that lands
	// while the grid is computed leaves it stored under a dead version.
	cacheable := false
	if uc.cache != nil {
		key.Version, cacheable = uc.cache.Version(ctx, in.BarberID)
	}
	if cacheable {
		if g, ok := uc.cache.Get(ctx, key); ok {
			g.MarkPast(now)
			return g, nil
		}
	}

	src, err := loadSources(ctx, uc.repo, in.BarberID, weekStart, weekStart.AddDate(0, 0, 7), uc.policy, uc.logger)
	if err != nil {
		return nil, err
	}

	grid := availability.Generate(
		uc.policy.Grid,
		weekStart,
		time.Duration(svc.DurationMin)*time.Minute,
		now,
		src,
	)

	if cacheable {
		uc.cache.Set(ctx, key, grid)
	}
	return &grid, nil
}
