package routes

import (
	"context"

	"gorm.io/gorm"
)

// sqlPinger exposes the pool behind gorm for the readiness probe.
type sqlPinger struct {
	db *gorm.DB
}

func (p sqlPinger) PingContext(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, uint) {}
