package httperr

import "errors"

// Business error codes returned to callers. Every code maps to exactly
// one HTTP status in Status.
const (
	CodeInvalidOffering          = "invalid_offering"
	CodeDuplicateContact         = "duplicate_contact"
	CodeSlotConflict             = "slot_conflict"
	CodeSlotUnavailable          = "slot_unavailable"
	CodeCancellationWindowClosed = "cancellation_window_closed"
	CodeTransient                = "transient_error"
	CodeForbidden                = "forbidden"
	CodeInvalidState             = "invalid_state"

	CodeServiceNotFound     = "service_not_found"
	CodeBarberNotFound      = "barber_not_found"
	CodeCustomerNotFound    = "customer_not_found"
	CodeAppointmentNotFound = "appointment_not_found"
	CodeNotFound            = "not_found"

	CodeValidation       = "validation_error"
	CodeInvalidStartTime = "invalid_start_time"
	CodeSlotInPast       = "slot_in_past"
	CodeInvalidDuration  = "invalid_duration"
	CodeMissingContact   = "missing_contact"
	CodeInvalidContact   = "invalid_contact"
	CodeInvalidStatus    = "invalid_status"
	CodeInvalidSchedule  = "invalid_schedule"
)

type BusinessError struct {
	Code   string
	Detail string
}

func (e BusinessError) Error() string {
	if e.Detail != "" {
		return e.Code + ": " + e.Detail
	}
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func ErrBusinessf(code, detail string) error {
	return BusinessError{Code: code, Detail: detail}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// CodeOf returns the business code carried by err, or "" when err is
// not a business error.
func CodeOf(err error) string {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
