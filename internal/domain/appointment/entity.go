package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/auth"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// ===============================
// Permissions
// ===============================

// CanStaffTransition checks a staff-initiated move to status to.
// Staff transitions are free-form; only the barber may start a service.
func CanStaffTransition(actor auth.Actor, ap *models.Appointment, to Status) error {
	if !actor.IsStaff() || !actor.CanManageBarber(ap.BarberID) {
		return httperr.ErrBusiness(httperr.CodeForbidden)
	}
	if to == StatusInProgress && !actor.IsBarber() {
		return httperr.ErrBusiness(httperr.CodeForbidden)
	}
	return nil
}

// CanCustomerCancel allows a customer to cancel only their own
// appointment and only while its date is after today in loc.
func CanCustomerCancel(actor auth.Actor, ap *models.Appointment, now time.Time, loc *time.Location) error {
	if !actor.IsCustomer() || ap.CustomerID == nil || *ap.CustomerID != actor.UserID {
		return httperr.ErrBusiness(httperr.CodeForbidden)
	}
	if Status(ap.Status) == StatusCancelled {
		return httperr.ErrBusiness(httperr.CodeInvalidState)
	}
	if !dateOf(ap.StartTime, loc).After(dateOf(now, loc)) {
		return httperr.ErrBusiness(httperr.CodeCancellationWindowClosed)
	}
	return nil
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ===============================
// Domain Actions
// ===============================

// Apply moves ap to status to and stamps the matching timestamp.
func Apply(ap *models.Appointment, to Status, now time.Time) {
	ap.Status = string(to)
	switch to {
	case StatusCancelled:
		ap.CancelledAt = &now
	case StatusCompleted:
		ap.CompletedAt = &now
	}
}
