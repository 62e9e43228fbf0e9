package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create       AppointmentCreator
	cancel       AppointmentCanceller
	updateStatus StatusUpdater
	listByDate   DayLister
	listByMonth  MonthLister
	listMine     CustomerLister
	logger       *slog.Logger
}

func NewAppointmentHandler(
	create AppointmentCreator,
	cancel AppointmentCanceller,
	updateStatus StatusUpdater,
	listByDate DayLister,
	listByMonth MonthLister,
	listMine CustomerLister,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:       create,
		cancel:       cancel,
		updateStatus: updateStatus,
		listByDate:   listByDate,
		listByMonth:  listByMonth,
		listMine:     listMine,
		logger:       logger,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type WalkInRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type CreateAppointmentRequest struct {
	BarberID    uint           `json:"barber_id" binding:"required"`
	ServiceID   uint           `json:"service_id" binding:"required"`
	StartTime   string         `json:"start_time" binding:"required"`
	SubjectName string         `json:"subject_name" binding:"max=100"`
	CustomerID  *uint          `json:"customer_id"`
	WalkIn      *WalkInRequest `json:"walk_in"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	in := appointment.CreateInput{
		BarberID:    req.BarberID,
		ServiceID:   req.ServiceID,
		StartTime:   req.StartTime,
		SubjectName: req.SubjectName,
		CustomerID:  req.CustomerID,
	}
	if req.WalkIn != nil {
		in.WalkIn = &validators.Contact{
			Name:  req.WalkIn.Name,
			Email: req.WalkIn.Email,
			Phone: req.WalkIn.Phone,
		}
	}

	ap, err := h.create.Execute(c.Request.Context(), middleware.Actor(c), in)
	if err != nil {
		httperr.FromError(c, h.logger, "appointment_create_failed", err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		httperr.FromError(c, h.logger, "appointment_cancel_failed", err)
		return
	}

	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	ap, err := h.updateStatus.Execute(c.Request.Context(), middleware.Actor(c), appointment.UpdateStatusInput{
		AppointmentID: id,
		Status:        req.Status,
	})
	if err != nil {
		httperr.FromError(c, h.logger, "appointment_status_failed", err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// LISTINGS
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	barberID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		badRequest(c)
		return
	}

	out, err := h.listByDate.Execute(c.Request.Context(), middleware.Actor(c), barberID, date)
	if err != nil {
		httperr.FromError(c, h.logger, "appointment_list_failed", err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	barberID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil {
		badRequest(c)
		return
	}

	out, err := h.listByMonth.Execute(c.Request.Context(), middleware.Actor(c), barberID, year, month)
	if err != nil {
		httperr.FromError(c, h.logger, "appointment_list_failed", err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	out, err := h.listMine.Execute(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, h.logger, "appointment_list_failed", err)
		return
	}

	httpresp.List(c, out)
}
