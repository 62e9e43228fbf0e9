package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
)

type AdminHandler struct {
	sweep  Sweeper
	logger *slog.Logger
}

func NewAdminHandler(sweep Sweeper, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{sweep: sweep, logger: logger}
}

// Sweep runs the completion sweep now, outside its cron schedule.
func (h *AdminHandler) Sweep(c *gin.Context) {
	n, err := h.sweep.Execute(c.Request.Context())
	if err != nil {
		httperr.FromError(c, h.logger, "sweep_failed", err)
		return
	}
	httpresp.OK(c, gin.H{"completed": n})
}
