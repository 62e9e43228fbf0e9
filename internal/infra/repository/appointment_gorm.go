package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// advisoryNamespace is the first key of the two-key advisory lock so
// barber locks never collide with other users of pg_advisory_*.
const advisoryNamespace = 4711

type AppointmentGormRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewAppointmentGormRepository(db *gorm.DB, lockTimeout time.Duration) *AppointmentGormRepository {
	if lockTimeout <= 0 {
		lockTimeout = 2 * time.Second
	}
	return &AppointmentGormRepository{db: db, lockTimeout: lockTimeout}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// --------------------------------------------------
// Catalog / Directory
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	if err := r.db.WithContext(ctx).First(&svc, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &svc, nil
}

func (r *AppointmentGormRepository) GetBarber(ctx context.Context, id uint) (*models.Barber, error) {
	var b models.Barber
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *AppointmentGormRepository) OffersService(ctx context.Context, barberID, serviceID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BarberService{}).
		Where("barber_id = ? AND service_id = ?", barberID, serviceID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) GetCustomer(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, models.RoleCustomer).
		First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *AppointmentGormRepository) FindByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})

	switch {
	case email != "" && phone != "":
		q = q.Where("LOWER(email) = ? OR phone = ?", email, phone)
	case email != "":
		q = q.Where("LOWER(email) = ?", email)
	case phone != "":
		q = q.Where("phone = ?", phone)
	default:
		return nil, domain.ErrNotFound
	}

	var u models.User
	if err := q.First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// CreateWalkIn relies on the partial unique indexes on users.email and
// users.phone when two counters race for the same contact.
func (r *AppointmentGormRepository) CreateWalkIn(ctx context.Context, name, email, phone string) (*models.User, error) {
	u := models.User{
		Name:   name,
		Email:  email,
		Phone:  phone,
		Role:   models.RoleCustomer,
		WalkIn: true,
	}
	if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ErrBusiness(httperr.CodeDuplicateContact)
		}
		return nil, err
	}
	return &u, nil
}

// --------------------------------------------------
// Schedule
// --------------------------------------------------

func (r *AppointmentGormRepository) ListWorkingHours(ctx context.Context, barberID uint) ([]models.WorkingHours, error) {
	var hours []models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		return nil, err
	}
	return hours, nil
}

func (r *AppointmentGormRepository) ReplaceWorkingHours(ctx context.Context, barberID uint, rows []models.WorkingHours) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("barber_id = ?", barberID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *AppointmentGormRepository) ListUnavailability(ctx context.Context, barberID uint, fromDate, toDate string) ([]models.Unavailability, error) {
	var out []models.Unavailability
	if err := r.db.WithContext(ctx).
		Where("barber_id = ? AND date >= ? AND date <= ?", barberID, fromDate, toDate).
		Order("date ASC, start_time ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AppointmentGormRepository) CreateUnavailability(ctx context.Context, u *models.Unavailability) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *AppointmentGormRepository) DeleteUnavailability(ctx context.Context, barberID, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND barber_id = ?", id, barberID).
		Delete(&models.Unavailability{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// Appointment (read)
// --------------------------------------------------

func (r *AppointmentGormRepository) ListActiveAppointments(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"barber_id = ? AND status <> ? AND start_time >= ? AND start_time < ?",
			barberID, string(domain.StatusCancelled), start, end,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where(
			"barber_id = ? AND start_time >= ? AND start_time < ?",
			barberID, start, end,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListCustomerAppointments(
	ctx context.Context,
	customerID uint,
	from time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND start_time >= ?", customerID, from).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.db.WithContext(ctx).First(&ap, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

// --------------------------------------------------
// Appointment (write)
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *AppointmentGormRepository) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// CompletePastAppointments is a single UPDATE ... RETURNING, so rows
// changed by a concurrent sweep are never reported twice.
func (r *AppointmentGormRepository) CompletePastAppointments(ctx context.Context, now time.Time) ([]models.Appointment, error) {
	var rows []models.Appointment
	err := r.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("status NOT IN ? AND start_time < ?", domain.SweepExcluded(), now).
		Updates(map[string]any{
			"status":       string(domain.StatusCompleted),
			"completed_at": now,
			"updated_at":   now,
		}).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// --------------------------------------------------
// Critical section
// --------------------------------------------------

// WithBarberLock opens a transaction, waits at most lockTimeout for the
// barber's advisory lock and hands fn a repository bound to that
// transaction. The lock is released at commit or rollback.
func (r *AppointmentGormRepository) WithBarberLock(
	ctx context.Context,
	barberID uint,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())).Error; err != nil {
			return err
		}
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?::int, ?::int)", advisoryNamespace, barberID).Error; err != nil {
			return err
		}
		return fn(&AppointmentGormRepository{db: tx, lockTimeout: r.lockTimeout})
	})
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
