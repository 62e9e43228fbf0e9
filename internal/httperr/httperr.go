package httperr

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

var messages = map[string]string{
	CodeInvalidOffering:          "Barber does not offer this service.",
	CodeDuplicateContact:         "A customer with this email or phone already exists.",
	CodeSlotConflict:             "This time slot is already booked.",
	CodeSlotUnavailable:          "The barber is not available at this time.",
	CodeCancellationWindowClosed: "Appointments can only be cancelled before their day.",
	CodeTransient:                "Temporary failure, please try again.",
	CodeForbidden:                "Operation not allowed.",
	CodeInvalidState:             "Appointment cannot change to this status.",
	CodeServiceNotFound:          "Service not found.",
	CodeBarberNotFound:           "Barber not found.",
	CodeCustomerNotFound:         "Customer not found.",
	CodeAppointmentNotFound:      "Appointment not found.",
	CodeNotFound:                 "Not found.",
	CodeValidation:               "Invalid data.",
	CodeInvalidStartTime:         "Invalid start time.",
	CodeSlotInPast:               "This time slot is in the past.",
	CodeInvalidDuration:          "Service duration must be positive.",
	CodeMissingContact:           "Email or phone is required.",
	CodeInvalidContact:           "Invalid email or phone.",
	CodeInvalidStatus:            "Unknown appointment status.",
	CodeInvalidSchedule:          "Invalid schedule entry.",
}

// Status maps a business code onto its HTTP status.
func Status(code string) int {
	switch code {
	case CodeServiceNotFound, CodeBarberNotFound, CodeCustomerNotFound,
		CodeAppointmentNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeSlotConflict, CodeDuplicateContact, CodeCancellationWindowClosed, CodeInvalidState:
		return http.StatusConflict
	case CodeInvalidOffering, CodeSlotUnavailable:
		return http.StatusUnprocessableEntity
	case CodeForbidden:
		return http.StatusForbidden
	case CodeTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func Message(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return messages[CodeValidation]
}

// FromError writes err as a JSON error. Non-business errors become 500
// and are logged, never echoed.
func FromError(c *gin.Context, logger *slog.Logger, fallbackCode string, err error) {
	code := CodeOf(err)
	if code == "" {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), "request failed",
				"path", c.FullPath(), "err", err)
		}
		Internal(c, fallbackCode, "Internal error.")
		return
	}
	Write(c, Status(code), code, Message(code))
}
