package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func seedAppointment(r *fakeRepo, id uint, barber uint, start time.Time, status domain.Status) {
	cid := customerID
	r.apps[id] = models.Appointment{
		ID: id, BarberID: barber, CustomerID: &cid,
		StartTime: start, DurationMin: 30, EndTime: start.Add(30 * time.Minute),
		Status: string(status),
	}
}

// ======================================================
// CANCEL
// ======================================================

func TestCustomerCancelWindow(t *testing.T) {
	r := newFixture(t)
	seedAppointment(r, 2, barberID, mon(15, 0), domain.StatusConfirmed)
	seedAppointment(r, 3, barberID, mon(9, 0).AddDate(0, 0, 1), domain.StatusConfirmed)

	uc := NewCancelAppointment(r, testPolicy(mon(8, 0)), Effects{Logger: discardLogger()})
	ctx := context.Background()

	// Today, hours away: too late.
	_, err := uc.Execute(ctx, auth.Customer(customerID), 2)
	expectCode(t, err, httperr.CodeCancellationWindowClosed)

	// Tomorrow early morning: allowed.
	ap, err := uc.Execute(ctx, auth.Customer(customerID), 3)
	if err != nil {
		t.Fatalf("cancel tomorrow: %v", err)
	}
	if ap.Status != string(domain.StatusCancelled) || ap.CancelledAt == nil {
		t.Fatalf("not cancelled: %+v", ap)
	}

	// Twice is an invalid state.
	_, err = uc.Execute(ctx, auth.Customer(customerID), 3)
	expectCode(t, err, httperr.CodeInvalidState)
}

func TestCancelFreesSlot(t *testing.T) {
	r := newFixture(t)
	ctx := context.Background()

	_, err := NewCancelAppointment(r, testPolicy(mon(8, 0)), Effects{Logger: discardLogger()}).
		Execute(ctx, auth.Admin(adminUserID), 1)
	if err != nil {
		t.Fatalf("staff cancel: %v", err)
	}

	if _, err := newCreate(r, mon(8, 0)).Execute(ctx, auth.Customer(customerID), customerBooking("2026-03-02T10:00")); err != nil {
		t.Fatalf("slot freed by cancellation should be bookable: %v", err)
	}
}

// concurrentCancel lets the first read through and then cancels the
// row, as a staff request committing between read and lock would.
type concurrentCancel struct {
	*fakeRepo
	at   time.Time
	once sync.Once
}

func (r *concurrentCancel) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	ap, err := r.fakeRepo.GetAppointment(ctx, id)
	r.once.Do(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		cur := r.apps[id]
		domain.Apply(&cur, domain.StatusCancelled, r.at)
		r.apps[id] = cur
	})
	return ap, err
}

func TestCancelRechecksLockedRow(t *testing.T) {
	base := newFixture(t)
	seedAppointment(base, 3, barberID, mon(9, 0).AddDate(0, 0, 1), domain.StatusConfirmed)
	staffAt := mon(7, 30)
	r := &concurrentCancel{fakeRepo: base, at: staffAt}

	uc := NewCancelAppointment(r, testPolicy(mon(8, 0)), Effects{Logger: discardLogger()})
	_, err := uc.Execute(context.Background(), auth.Customer(customerID), 3)
	expectCode(t, err, httperr.CodeInvalidState)

	if base.lockAttempts != 1 {
		t.Fatalf("cancel should run under the barber lock, attempts = %d", base.lockAttempts)
	}
	got := base.apps[3]
	if got.CancelledAt == nil || !got.CancelledAt.Equal(staffAt) {
		t.Fatalf("concurrent cancellation overwritten: %+v", got.CancelledAt)
	}
}

func TestCancelPermissions(t *testing.T) {
	r := newFixture(t)
	seedAppointment(r, 3, barberID, mon(9, 0).AddDate(0, 0, 2), domain.StatusConfirmed)
	r.users[11] = models.User{ID: 11, Name: "Other", Role: models.RoleCustomer}

	uc := NewCancelAppointment(r, testPolicy(mon(8, 0)), Effects{Logger: discardLogger()})
	ctx := context.Background()

	_, err := uc.Execute(ctx, auth.Customer(11), 3)
	expectCode(t, err, httperr.CodeForbidden)

	_, err = uc.Execute(ctx, auth.Barber(barberUserID, otherBarberID), 3)
	expectCode(t, err, httperr.CodeForbidden)

	_, err = uc.Execute(ctx, auth.Customer(customerID), 404)
	expectCode(t, err, httperr.CodeAppointmentNotFound)

	// Staff may cancel on the same day.
	if _, err := uc.Execute(ctx, auth.Barber(barberUserID, barberID), 1); err != nil {
		t.Fatalf("barber cancel own appointment: %v", err)
	}
}

// ======================================================
// UPDATE STATUS
// ======================================================

func TestUpdateStatusTransitions(t *testing.T) {
	r := newFixture(t)
	uc := NewUpdateStatus(r, testPolicy(mon(10, 5)), Effects{Logger: discardLogger()})
	ctx := context.Background()

	_, err := uc.Execute(ctx, auth.Admin(adminUserID), UpdateStatusInput{AppointmentID: 1, Status: "in_progress"})
	expectCode(t, err, httperr.CodeForbidden)

	ap, err := uc.Execute(ctx, auth.Barber(barberUserID, barberID), UpdateStatusInput{AppointmentID: 1, Status: "in_progress"})
	if err != nil || ap.Status != "in_progress" {
		t.Fatalf("barber start service: %v %v", ap, err)
	}

	ap, err = uc.Execute(ctx, auth.Admin(adminUserID), UpdateStatusInput{AppointmentID: 1, Status: "completed"})
	if err != nil || ap.CompletedAt == nil {
		t.Fatalf("admin complete: %v", err)
	}

	// Free-form: staff may move it back.
	if _, err := uc.Execute(ctx, auth.Admin(adminUserID), UpdateStatusInput{AppointmentID: 1, Status: "no_show"}); err != nil {
		t.Fatalf("completed -> no_show: %v", err)
	}

	_, err = uc.Execute(ctx, auth.Admin(adminUserID), UpdateStatusInput{AppointmentID: 1, Status: "done"})
	expectCode(t, err, httperr.CodeInvalidStatus)

	_, err = uc.Execute(ctx, auth.Barber(barberUserID, otherBarberID), UpdateStatusInput{AppointmentID: 1, Status: "confirmed"})
	expectCode(t, err, httperr.CodeForbidden)

	_, err = uc.Execute(ctx, auth.Customer(customerID), UpdateStatusInput{AppointmentID: 1, Status: "confirmed"})
	expectCode(t, err, httperr.CodeForbidden)
}

func TestReviveCancelledRechecksConflicts(t *testing.T) {
	r := newFixture(t)
	ctx := context.Background()
	now := mon(8, 0)

	cancel := NewCancelAppointment(r, testPolicy(now), Effects{Logger: discardLogger()})
	if _, err := cancel.Execute(ctx, auth.Admin(adminUserID), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := newCreate(r, now).Execute(ctx, auth.Customer(customerID), customerBooking("2026-03-02T10:15")); err != nil {
		t.Fatal(err)
	}

	_, err := NewUpdateStatus(r, testPolicy(now), Effects{Logger: discardLogger()}).
		Execute(ctx, auth.Admin(adminUserID), UpdateStatusInput{AppointmentID: 1, Status: "confirmed"})
	expectCode(t, err, httperr.CodeSlotConflict)
	assertNoOverlap(t, r)
}

// ======================================================
// SWEEP
// ======================================================

func TestCompleteSweepIdempotent(t *testing.T) {
	r := newFixture(t)
	seedAppointment(r, 2, barberID, mon(11, 0), domain.StatusScheduled)
	seedAppointment(r, 3, barberID, mon(12, 0), domain.StatusCancelled)
	seedAppointment(r, 4, barberID, mon(13, 0), domain.StatusNoShow)
	seedAppointment(r, 5, barberID, mon(15, 0), domain.StatusConfirmed)
	seedAppointment(r, 6, barberID, mon(9, 0), domain.StatusInProgress)

	cache := newFakeCache()
	uc := NewCompleteSweep(r, testPolicy(mon(14, 0)).Clock, Effects{Cache: cache, Logger: discardLogger()})
	ctx := context.Background()

	n, err := uc.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("first sweep completed %d, want 3", n)
	}

	for id, want := range map[uint]domain.Status{
		1: domain.StatusCompleted,
		2: domain.StatusCompleted,
		3: domain.StatusCancelled,
		4: domain.StatusNoShow,
		5: domain.StatusConfirmed,
		6: domain.StatusCompleted,
	} {
		if got := r.apps[id].Status; got != string(want) {
			t.Fatalf("appointment %d = %s, want %s", id, got, want)
		}
	}

	n, err = uc.Execute(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second sweep changed %d rows (err %v)", n, err)
	}
	if len(cache.invalidated) != 3 {
		t.Fatalf("invalidations = %d", len(cache.invalidated))
	}
}

// ======================================================
// LISTINGS
// ======================================================

func TestListings(t *testing.T) {
	r := newFixture(t)
	seedAppointment(r, 2, barberID, mon(11, 0).AddDate(0, 0, 3), domain.StatusConfirmed)
	seedAppointment(r, 3, barberID, mon(11, 0).AddDate(0, 0, -3), domain.StatusCompleted)
	p := testPolicy(mon(8, 0))
	ctx := context.Background()
	staff := auth.Barber(barberUserID, barberID)

	day, err := NewListAppointmentsByDate(r, p).Execute(ctx, staff, barberID, "2026-03-02")
	if err != nil || len(day) != 1 || day[0].ID != 1 {
		t.Fatalf("day view: %v %v", day, err)
	}

	_, err = NewListAppointmentsByDate(r, p).Execute(ctx, staff, barberID, "02/03/2026")
	expectCode(t, err, httperr.CodeValidation)

	_, err = NewListAppointmentsByDate(r, p).Execute(ctx, auth.Barber(barberUserID, otherBarberID), barberID, "2026-03-02")
	expectCode(t, err, httperr.CodeForbidden)

	month, err := NewListAppointmentsByMonth(r, p).Execute(ctx, staff, barberID, 2026, 3)
	if err != nil || len(month) != 2 {
		t.Fatalf("month view: %d rows, %v", len(month), err)
	}

	_, err = NewListAppointmentsByMonth(r, p).Execute(ctx, staff, barberID, 2026, 13)
	expectCode(t, err, httperr.CodeValidation)

	mine, err := NewListCustomerAppointments(r, p).Execute(ctx, auth.Customer(customerID))
	if err != nil || len(mine) != 2 {
		t.Fatalf("customer view: %d rows, %v", len(mine), err)
	}
	if !mine[0].StartTime.Before(mine[1].StartTime) {
		t.Fatal("customer view not ordered by start")
	}

	_, err = NewListCustomerAppointments(r, p).Execute(ctx, staff)
	expectCode(t, err, httperr.CodeForbidden)
}
