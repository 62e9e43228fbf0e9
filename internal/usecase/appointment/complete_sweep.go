package appointment

import (
	"context"
	"log/slog"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// CompleteSweep promotes every live appointment that has started to
// completed. Running it twice changes nothing the second time.
type CompleteSweep struct {
	repo    domain.Repository
	clock   timezone.Clock
	effects Effects
	logger  *slog.Logger
}

func NewCompleteSweep(
	repo domain.Repository,
	clock timezone.Clock,
	effects Effects,
) *CompleteSweep {
	return &CompleteSweep{
		repo:    repo,
		clock:   clock,
		effects: effects,
		logger:  effects.logger(),
	}
}

func (uc *CompleteSweep) Execute(ctx context.Context) (int, error) {
	rows, err := uc.repo.CompletePastAppointments(ctx, uc.clock.Now())
	if err != nil {
		return 0, err
	}

	for i := range rows {
		uc.effects.appointmentChanged(ctx, uc.repo, nil,
			audit.ActionAppointmentCompleted,
			notify.TemplateAppointmentCompleted,
			&rows[i],
			map[string]any{"by": "sweep"},
		)
	}

	if len(rows) > 0 {
		uc.logger.InfoContext(ctx, "completion sweep", "completed", len(rows))
	}
	return len(rows), nil
}
