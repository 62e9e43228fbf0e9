// Package auth carries the caller's identity and role into core
// operations. Token issuance lives outside this service.
package auth

import "github.com/BruksfildServices01/salon-booking/internal/models"

type Actor struct {
	UserID   uint
	Role     string
	BarberID *uint
}

func Customer(userID uint) Actor {
	return Actor{UserID: userID, Role: models.RoleCustomer}
}

func Barber(userID, barberID uint) Actor {
	return Actor{UserID: userID, Role: models.RoleBarber, BarberID: &barberID}
}

func Admin(userID uint) Actor {
	return Actor{UserID: userID, Role: models.RoleAdmin}
}

func (a Actor) IsAdmin() bool    { return a.Role == models.RoleAdmin }
func (a Actor) IsBarber() bool   { return a.Role == models.RoleBarber && a.BarberID != nil }
func (a Actor) IsCustomer() bool { return a.Role == models.RoleCustomer }
func (a Actor) IsStaff() bool    { return a.IsAdmin() || a.IsBarber() }

// CanManageBarber reports whether the actor may act on barberID's
// calendar: admins on any, barbers on their own.
func (a Actor) CanManageBarber(barberID uint) bool {
	if a.IsAdmin() {
		return true
	}
	return a.IsBarber() && *a.BarberID == barberID
}

// Ref returns the user id for audit records; nil for the system actor.
func (a Actor) Ref() *uint {
	if a.UserID == 0 {
		return nil
	}
	id := a.UserID
	return &id
}
