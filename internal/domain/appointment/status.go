package appointment

import "github.com/BruksfildServices01/salon-booking/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusNoShow     Status = "no_show"
)

var allStatuses = map[Status]struct{}{
	StatusScheduled:  {},
	StatusConfirmed:  {},
	StatusInProgress: {},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusNoShow:     {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := allStatuses[st]; !ok {
		return "", httperr.ErrBusinessf(httperr.CodeInvalidStatus, s)
	}
	return st, nil
}

// InitialStatus is the state written by the booking transactor.
func InitialStatus() Status {
	return StatusConfirmed
}

// Occupies reports whether the appointment still holds its time range.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

// SweepExcluded lists the statuses the completion sweep leaves alone.
func SweepExcluded() []string {
	return []string{string(StatusCancelled), string(StatusCompleted), string(StatusNoShow)}
}
