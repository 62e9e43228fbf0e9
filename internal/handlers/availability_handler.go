package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/usecase/appointment"
)

// maxWeekOffset bounds how far ahead the public grid can be browsed.
const maxWeekOffset = 12

type AvailabilityHandler struct {
	grid   AvailabilityReader
	logger *slog.Logger
}

func NewAvailabilityHandler(grid AvailabilityReader, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{grid: grid, logger: logger}
}

// Get serves the weekly grid for ?barber_id&service_id&week_offset.
func (h *AvailabilityHandler) Get(c *gin.Context) {
	barberID, err1 := strconv.ParseUint(c.Query("barber_id"), 10, 64)
	serviceID, err2 := strconv.ParseUint(c.Query("service_id"), 10, 64)
	weekOffset, err3 := strconv.Atoi(c.DefaultQuery("week_offset", "0"))
	if err1 != nil || err2 != nil || err3 != nil || weekOffset < 0 || weekOffset > maxWeekOffset {
		badRequest(c)
		return
	}

	g, err := h.grid.Execute(c.Request.Context(), appointment.AvailabilityInput{
		BarberID:   uint(barberID),
		ServiceID:  uint(serviceID),
		WeekOffset: weekOffset,
	})
	if err != nil {
		httperr.FromError(c, h.logger, "availability_failed", err)
		return
	}

	httpresp.OK(c, g)
}
