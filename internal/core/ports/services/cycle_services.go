package services

import (
	"context"
	"time"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// CycleReaderSvc defines read and analytics operations for cycles.
type CycleReaderSvc interface {
	// GetUserCycles retrieves the user's cycles, newest start_date
	// first. A limit <= 0 means all cycles.
	GetUserCycles(ctx context.Context, userID string, limit int) ([]domain.Cycle, error)

	// GetCycleWithLogs retrieves a cycle and its daily logs. Returns
	// apperrors.ErrNotFound when the cycle does not exist or belongs to
	// a different user.
	GetCycleWithLogs(ctx context.Context, userID string, cycleID string) (*domain.Cycle, []domain.DailyLog, error)

	// CalculateStatistics derives average cycle length, average period
	// length and total cycle count from the user's history.
	CalculateStatistics(ctx context.Context, userID string) (*domain.CycleStatistics, error)

	// PredictNextCycle forecasts the next cycle start date. Returns
	// (nil, nil) when there is insufficient data to predict.
	PredictNextCycle(ctx context.Context, userID string) (*domain.CyclePrediction, error)
}

// CycleWriterSvc defines write operations for cycles and daily logs.
type CycleWriterSvc interface {
	// CreateCycle records a new cycle starting at startDate.
	CreateCycle(ctx context.Context, userID string, startDate time.Time, endDate *time.Time, periodLength *int) (*domain.Cycle, error)

	// UpdateCycle sets the end date and/or period length of an existing
	// cycle owned by the user.
	UpdateCycle(ctx context.Context, userID string, cycleID string, endDate *time.Time, periodLength *int) (*domain.Cycle, error)

	// AddDailyLog attaches a daily log to a cycle owned by the user.
	AddDailyLog(ctx context.Context, userID string, cycleID string, logDate time.Time, selections map[string]any) (*domain.DailyLog, error)
}

// CycleSvcFacade combines all cycle service interfaces.
type CycleSvcFacade interface {
	CycleReaderSvc
	CycleWriterSvc
}
