package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/config"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/handlers"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/salon-booking/internal/usecase/appointment"
	ucSchedule "github.com/BruksfildServices01/salon-booking/internal/usecase/schedule"
)

// Deps are the singletons built by main.
type Deps struct {
	DB     *gorm.DB
	Repo   domain.Repository
	Policy ucAppointment.Policy
	Cache  ucAppointment.GridCache
	Audit  *audit.Dispatcher
	Notify *notify.Dispatcher
	Clock  timezone.Clock
	Logger *slog.Logger
}

// RegisterRoutes builds the use cases and mounts every endpoint. It
// returns the completion sweep so main can schedule it.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, d Deps) *ucAppointment.CompleteSweep {

	// ======================================================
	// USE CASES
	// ======================================================
	effects := ucAppointment.Effects{
		Audit:  d.Audit,
		Notify: d.Notify,
		Cache:  d.Cache,
		Logger: d.Logger,
	}

	getAvailabilityUC := ucAppointment.NewGetAvailability(d.Repo, d.Policy, effects)
	createAppointmentUC := ucAppointment.NewCreateAppointment(d.Repo, d.Policy, effects)
	cancelAppointmentUC := ucAppointment.NewCancelAppointment(d.Repo, d.Policy, effects)
	updateStatusUC := ucAppointment.NewUpdateStatus(d.Repo, d.Policy, effects)
	completeSweepUC := ucAppointment.NewCompleteSweep(d.Repo, d.Clock, effects)

	listByDateUC := ucAppointment.NewListAppointmentsByDate(d.Repo, d.Policy)
	listByMonthUC := ucAppointment.NewListAppointmentsByMonth(d.Repo, d.Policy)
	listMineUC := ucAppointment.NewListCustomerAppointments(d.Repo, d.Policy)

	var invalidator ucSchedule.Invalidator = noopInvalidator{}
	if d.Cache != nil {
		invalidator = d.Cache
	}
	workingHoursUC := ucSchedule.NewWorkingHours(d.Repo, invalidator, d.Audit)
	unavailabilityUC := ucSchedule.NewUnavailability(d.Repo, d.Clock, invalidator, d.Audit)

	// ======================================================
	// HANDLERS
	// ======================================================
	healthHandler := handlers.NewHealthHandler(sqlPinger{db: d.DB})
	availabilityHandler := handlers.NewAvailabilityHandler(getAvailabilityUC, d.Logger)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		cancelAppointmentUC,
		updateStatusUC,
		listByDateUC,
		listByMonthUC,
		listMineUC,
		d.Logger,
	)

	scheduleHandler := handlers.NewScheduleHandler(workingHoursUC, unavailabilityUC, d.Logger)
	auditLogsHandler := handlers.NewAuditLogsHandler(audit.New(d.DB), d.Logger)
	adminHandler := handlers.NewAdminHandler(completeSweepUC, d.Logger)

	// ======================================================
	// ROUTES
	// ======================================================
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/availability", middleware.OptionalAuth(cfg.JWTSecret), availabilityHandler.Get)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			secured.POST("/appointments", appointmentHandler.Create)
			secured.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)

			secured.GET("/me/appointments",
				middleware.RequireRole(models.RoleCustomer),
				appointmentHandler.ListMine,
			)

			staff := secured.Group("/")
			staff.Use(middleware.RequireRole(models.RoleAdmin, models.RoleBarber))
			{
				staff.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)

				staff.GET("/barbers/:id/appointments", appointmentHandler.ListByDate)
				staff.GET("/barbers/:id/appointments/month", appointmentHandler.ListByMonth)

				staff.GET("/barbers/:id/working-hours", scheduleHandler.GetWorkingHours)
				staff.PUT("/barbers/:id/working-hours", scheduleHandler.ReplaceWorkingHours)

				staff.GET("/barbers/:id/unavailability", scheduleHandler.ListUnavailability)
				staff.POST("/barbers/:id/unavailability", scheduleHandler.CreateUnavailability)
				staff.DELETE("/barbers/:id/unavailability/:uid", scheduleHandler.DeleteUnavailability)
			}

			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/sweep", adminHandler.Sweep)
				admin.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}

	return completeSweepUC
}
