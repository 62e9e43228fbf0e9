package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/schedule"
)

type ScheduleHandler struct {
	hours  WorkingHoursManager
	unav   UnavailabilityManager
	logger *slog.Logger
}

func NewScheduleHandler(hours WorkingHoursManager, unav UnavailabilityManager, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{hours: hours, unav: unav, logger: logger}
}

type WorkingHoursUpdateRequest struct {
	Days []schedule.WorkingDay `json:"days" binding:"dive"`
}

// ======================================================
// WORKING HOURS
// ======================================================

func (h *ScheduleHandler) GetWorkingHours(c *gin.Context) {
	barberID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	hours, err := h.hours.List(c.Request.Context(), middleware.Actor(c), barberID)
	if err != nil {
		httperr.FromError(c, h.logger, "working_hours_failed", err)
		return
	}

	httpresp.List(c, hours)
}

func (h *ScheduleHandler) ReplaceWorkingHours(c *gin.Context) {
	barberID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req WorkingHoursUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	hours, err := h.hours.Replace(c.Request.Context(), middleware.Actor(c), barberID, req.Days)
	if err != nil {
		httperr.FromError(c, h.logger, "working_hours_failed", err)
		return
	}

	httpresp.List(c, hours)
}

// ======================================================
// UNAVAILABILITY
// ======================================================

func (h *ScheduleHandler) ListUnavailability(c *gin.Context) {
	barberID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	out, err := h.unav.List(c.Request.Context(), middleware.Actor(c), barberID, c.Query("from"), c.Query("to"))
	if err != nil {
		httperr.FromError(c, h.logger, "unavailability_failed", err)
		return
	}

	httpresp.List(c, out)
}

func (h *ScheduleHandler) CreateUnavailability(c *gin.Context) {
	barberID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req schedule.UnavailabilityInput
	if err := c.ShouldBindJSON(&req); err != nil || req.Date == "" {
		badRequest(c)
		return
	}

	u, err := h.unav.Create(c.Request.Context(), middleware.Actor(c), barberID, req)
	if err != nil {
		httperr.FromError(c, h.logger, "unavailability_failed", err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

func (h *ScheduleHandler) DeleteUnavailability(c *gin.Context) {
	barberID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	id, ok := uintParam(c, "uid")
	if !ok {
		return
	}

	if err := h.unav.Delete(c.Request.Context(), middleware.Actor(c), barberID, id); err != nil {
		httperr.FromError(c, h.logger, "unavailability_failed", err)
		return
	}

	c.Status(http.StatusNoContent)
}
