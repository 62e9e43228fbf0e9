package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// ErrNotFound is returned by repositories for missing or tombstoned rows.
var ErrNotFound = errors.New("record not found")

type ServiceCatalog interface {
	GetService(ctx context.Context, id uint) (*models.Service, error)
}

type BarberDirectory interface {
	GetBarber(ctx context.Context, id uint) (*models.Barber, error)
	OffersService(ctx context.Context, barberID, serviceID uint) (bool, error)
}

type CustomerDirectory interface {
	GetCustomer(ctx context.Context, id uint) (*models.User, error)

	// FindByEmailOrPhone returns ErrNotFound when no live user holds
	// either contact. Empty arguments never match.
	FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)

	CreateWalkIn(ctx context.Context, name, email, phone string) (*models.User, error)
}

type Repository interface {
	ServiceCatalog
	BarberDirectory
	CustomerDirectory

	// -------- Schedule --------
	ListWorkingHours(ctx context.Context, barberID uint) ([]models.WorkingHours, error)
	ReplaceWorkingHours(ctx context.Context, barberID uint, rows []models.WorkingHours) error

	ListUnavailability(ctx context.Context, barberID uint, fromDate, toDate string) ([]models.Unavailability, error)
	CreateUnavailability(ctx context.Context, u *models.Unavailability) error
	DeleteUnavailability(ctx context.Context, barberID, id uint) error

	// -------- Appointment (read) --------

	// ListActiveAppointments returns non-cancelled appointments of the
	// barber starting in [start, end), ordered by start time.
	ListActiveAppointments(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error)
	ListAppointmentsForPeriod(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error)
	ListCustomerAppointments(ctx context.Context, customerID uint, from time.Time) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)

	// -------- Appointment (write) --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error

	// CompletePastAppointments promotes every sweepable appointment
	// starting before now and returns the rows it changed.
	CompletePastAppointments(ctx context.Context, now time.Time) ([]models.Appointment, error)

	// WithBarberLock runs fn in one transaction that holds an exclusive
	// lock on barberID's appointment set until commit.
	WithBarberLock(ctx context.Context, barberID uint, fn func(tx Repository) error) error
}
