package appointment

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BruksfildServices01/salon-booking/internal/domain/availability"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/interval"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// ======================================================
// FAKE REPOSITORY
// ======================================================

// fakeRepo keeps state in maps. WithBarberLock serializes per barber
// and rolls state back when fn fails, like a transaction would.
type fakeRepo struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex

	services map[uint]models.Service
	barbers  map[uint]models.Barber
	offers   map[[2]uint]bool
	users    map[uint]models.User
	hours    map[uint][]models.WorkingHours
	unav     []models.Unavailability
	apps     map[uint]models.Appointment
	nextID   uint

	// transientFailures makes the next n lock attempts fail with a
	// serialization error.
	transientFailures int
	lockAttempts      int
	createErr         error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		locks:    map[uint]*sync.Mutex{},
		services: map[uint]models.Service{},
		barbers:  map[uint]models.Barber{},
		offers:   map[[2]uint]bool{},
		users:    map[uint]models.User{},
		hours:    map[uint][]models.WorkingHours{},
		apps:     map[uint]models.Appointment{},
		nextID:   1000,
	}
}

var _ domain.Repository = (*fakeRepo)(nil)

func (r *fakeRepo) id() uint {
	r.nextID++
	return r.nextID
}

func (r *fakeRepo) GetService(_ context.Context, id uint) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *fakeRepo) GetBarber(_ context.Context, id uint) (*models.Barber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.barbers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r *fakeRepo) OffersService(_ context.Context, barberID, serviceID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offers[[2]uint{barberID, serviceID}], nil
}

func (r *fakeRepo) GetCustomer(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *fakeRepo) FindByEmailOrPhone(_ context.Context, email, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (email != "" && u.Email == email) || (phone != "" && u.Phone == phone) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) CreateWalkIn(_ context.Context, name, email, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := models.User{ID: r.id(), Name: name, Email: email, Phone: phone, Role: models.RoleCustomer, WalkIn: true}
	r.users[u.ID] = u
	return &u, nil
}

func (r *fakeRepo) ListWorkingHours(_ context.Context, barberID uint) ([]models.WorkingHours, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.WorkingHours(nil), r.hours[barberID]...), nil
}

func (r *fakeRepo) ReplaceWorkingHours(_ context.Context, barberID uint, rows []models.WorkingHours) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hours[barberID] = append([]models.WorkingHours(nil), rows...)
	return nil
}

func (r *fakeRepo) ListUnavailability(_ context.Context, barberID uint, from, to string) ([]models.Unavailability, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Unavailability
	for _, u := range r.unav {
		if u.BarberID == barberID && u.Date >= from && u.Date <= to {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateUnavailability(_ context.Context, u *models.Unavailability) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.id()
	r.unav = append(r.unav, *u)
	return nil
}

func (r *fakeRepo) DeleteUnavailability(_ context.Context, barberID, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, u := range r.unav {
		if u.ID == id && u.BarberID == barberID {
			r.unav = append(r.unav[:i], r.unav[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeRepo) sorted(keep func(models.Appointment) bool) []models.Appointment {
	var out []models.Appointment
	for _, ap := range r.apps {
		if keep(ap) {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

func (r *fakeRepo) ListActiveAppointments(_ context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(ap models.Appointment) bool {
		return ap.BarberID == barberID &&
			domain.Status(ap.Status).Occupies() &&
			!ap.StartTime.Before(start) && ap.StartTime.Before(end)
	}), nil
}

func (r *fakeRepo) ListAppointmentsForPeriod(_ context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(ap models.Appointment) bool {
		return ap.BarberID == barberID && !ap.StartTime.Before(start) && ap.StartTime.Before(end)
	}), nil
}

func (r *fakeRepo) ListCustomerAppointments(_ context.Context, customerID uint, from time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(ap models.Appointment) bool {
		return ap.CustomerID != nil && *ap.CustomerID == customerID && !ap.StartTime.Before(from)
	}), nil
}

func (r *fakeRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ap, ok := r.apps[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ap, nil
}

func (r *fakeRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	ap.ID = r.id()
	r.apps[ap.ID] = *ap
	return nil
}

func (r *fakeRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[ap.ID]; !ok {
		return domain.ErrNotFound
	}
	r.apps[ap.ID] = *ap
	return nil
}

func (r *fakeRepo) CompletePastAppointments(_ context.Context, now time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed []models.Appointment
	for id, ap := range r.apps {
		if slices.Contains(domain.SweepExcluded(), ap.Status) || !ap.StartTime.Before(now) {
			continue
		}
		domain.Apply(&ap, domain.StatusCompleted, now)
		r.apps[id] = ap
		changed = append(changed, ap)
	}
	return changed, nil
}

func (r *fakeRepo) WithBarberLock(ctx context.Context, barberID uint, fn func(tx domain.Repository) error) error {
	r.mu.Lock()
	r.lockAttempts++
	if r.transientFailures > 0 {
		r.transientFailures--
		r.mu.Unlock()
		return &pgconn.PgError{Code: "40001"}
	}
	l, ok := r.locks[barberID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[barberID] = l
	}
	r.mu.Unlock()

	l.Lock()
	defer l.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	appsSnap := make(map[uint]models.Appointment, len(r.apps))
	for k, v := range r.apps {
		appsSnap[k] = v
	}
	usersSnap := make(map[uint]models.User, len(r.users))
	for k, v := range r.users {
		usersSnap[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.rollback(barberID, appsSnap, usersSnap)
		return err
	}
	return nil
}

// rollback restores the barber's appointments and drops users created
// since the snapshot. Other barbers' rows are left alone.
func (r *fakeRepo) rollback(barberID uint, apps map[uint]models.Appointment, users map[uint]models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ap := range r.apps {
		if ap.BarberID == barberID {
			delete(r.apps, id)
		}
	}
	for id, ap := range apps {
		if ap.BarberID == barberID {
			r.apps[id] = ap
		}
	}
	for id := range r.users {
		if _, ok := users[id]; !ok {
			delete(r.users, id)
		}
	}
}

// ======================================================
// FIXTURE
// ======================================================

var salonLoc = time.FixedZone("salon", -3*3600)

// 2026-03-02 is a Monday.
func mon(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, salonLoc)
}

const (
	barberID      uint = 1
	otherBarberID uint = 2
	serviceID     uint = 1
	customerID    uint = 10
	barberUserID  uint = 20
	adminUserID   uint = 30
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture seeds a barber working 09:00-17:00 every day who offers a
// 30 minute haircut and already has a Monday 10:00 appointment.
func newFixture(t *testing.T) *fakeRepo {
	t.Helper()
	r := newFakeRepo()

	r.services[serviceID] = models.Service{ID: serviceID, Name: "Haircut", DurationMin: 30, Price: 50, Active: true}
	r.services[2] = models.Service{ID: 2, Name: "Beard", DurationMin: 20, Price: 30, Active: true}
	r.barbers[barberID] = models.Barber{ID: barberID, Name: "Ana", Email: "ana@salon.test"}
	r.barbers[otherBarberID] = models.Barber{ID: otherBarberID, Name: "Rui"}
	r.offers[[2]uint{barberID, serviceID}] = true
	r.offers[[2]uint{otherBarberID, serviceID}] = true
	r.users[customerID] = models.User{ID: customerID, Name: "Carla", Email: "carla@mail.test", Phone: "5511999990000", Role: models.RoleCustomer}

	for _, b := range []uint{barberID, otherBarberID} {
		for wd := 1; wd <= 7; wd++ {
			r.hours[b] = append(r.hours[b], models.WorkingHours{BarberID: b, Weekday: wd, StartTime: "09:00", EndTime: "17:00"})
		}
	}

	cid := customerID
	r.apps[1] = models.Appointment{
		ID: 1, Reference: "existing", BarberID: barberID, CustomerID: &cid,
		StartTime: mon(10, 0), DurationMin: 30, EndTime: mon(10, 30),
		Status: string(domain.StatusConfirmed),
	}
	return r
}

func testPolicy(now time.Time) Policy {
	return Policy{
		Clock:     timezone.FixedClock(now),
		Buffer:    15 * time.Minute,
		TxTimeout: time.Second,
		Grid:      availability.DefaultGridConfig(),
	}
}

// assertNoOverlap checks that no two live appointments of one barber
// share an instant.
func assertNoOverlap(t *testing.T, r *fakeRepo) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()

	byBarber := map[uint][]interval.Interval{}
	for _, ap := range r.apps {
		if !domain.Status(ap.Status).Occupies() {
			continue
		}
		iv := interval.Interval{Start: ap.StartTime, End: ap.EndTime}
		if interval.OverlapsAny(iv, byBarber[ap.BarberID]) {
			t.Fatalf("barber %d has overlapping appointments at %s", ap.BarberID, ap.StartTime)
		}
		byBarber[ap.BarberID] = append(byBarber[ap.BarberID], iv)
	}
}

func (r *fakeRepo) count(barber uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ap := range r.apps {
		if ap.BarberID == barber && domain.Status(ap.Status).Occupies() {
			n++
		}
	}
	return n
}
