// Package schedule manages the inputs of the availability grid: the
// weekly working hours and the dated unavailability blocks of a barber.
package schedule

import (
	"context"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type Repository interface {
	GetBarber(ctx context.Context, id uint) (*models.Barber, error)

	ListWorkingHours(ctx context.Context, barberID uint) ([]models.WorkingHours, error)
	ReplaceWorkingHours(ctx context.Context, barberID uint, rows []models.WorkingHours) error

	ListUnavailability(ctx context.Context, barberID uint, fromDate, toDate string) ([]models.Unavailability, error)
	CreateUnavailability(ctx context.Context, u *models.Unavailability) error
	DeleteUnavailability(ctx context.Context, barberID, id uint) error
}

var _ Repository = (domain.Repository)(nil)

// Invalidator drops cached grids of a barber after a schedule change.
type Invalidator interface {
	Invalidate(ctx context.Context, barberID uint)
}
