package repositories

import (
	"context"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// CycleReader defines read operations for cycle data.
type CycleReader interface {
	// FindCyclesByUserID retrieves a user's cycles ordered by start_date
	// descending. A limit <= 0 means no limit.
	FindCyclesByUserID(ctx context.Context, userID string, limit int) ([]domain.Cycle, error)

	// FindCycleByID retrieves a specific cycle. Returns
	// apperrors.ErrNotFound when it does not exist.
	FindCycleByID(ctx context.Context, cycleID string) (*domain.Cycle, error)
}

// CycleWriter defines write operations for cycle data.
type CycleWriter interface {
	// SaveCycle persists a new cycle.
	SaveCycle(ctx context.Context, cycle domain.Cycle) error

	// UpdateCycle updates an existing cycle's end_date/period_length.
	UpdateCycle(ctx context.Context, cycle domain.Cycle) error
}

// DailyLogReader defines read operations for daily logs.
type DailyLogReader interface {
	// FindLogsByCycleID retrieves the daily logs of a cycle ordered by
	// log_date ascending.
	FindLogsByCycleID(ctx context.Context, cycleID string) ([]domain.DailyLog, error)
}

// DailyLogWriter defines write operations for daily logs.
type DailyLogWriter interface {
	// SaveDailyLog persists a new daily log.
	SaveDailyLog(ctx context.Context, log domain.DailyLog) error
}

// CycleRepositoryFacade combines all cycle-related repository interfaces.
type CycleRepositoryFacade interface {
	CycleReader
	CycleWriter
}

// DailyLogRepositoryFacade combines all daily-log repository interfaces.
type DailyLogRepositoryFacade interface {
	DailyLogReader
	DailyLogWriter
}
