package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// minCyclesForPrediction is the least history required before any
// statistics or forecast can be derived.
const minCyclesForPrediction = 2

// cycleServiceImpl implements the CycleSvcFacade interface. Statistics
// and predictions are pure folds over the cycle history fetched from
// storage; the service keeps no state between calls.
type cycleServiceImpl struct {
	BaseService
	cycleRepo portsrepo.CycleRepositoryFacade
	logRepo   portsrepo.DailyLogRepositoryFacade
	ledger    portssvc.LedgerWriterSvc
	txm       portsrepo.TransactionManager
}

// NewCycleService creates a new cycle analytics service. The ledger is
// credited when a cycle transitions to completed; the completion update
// and the reward land in one database transaction.
func NewCycleService(cycleRepo portsrepo.CycleRepositoryFacade, logRepo portsrepo.DailyLogRepositoryFacade, ledger portssvc.LedgerWriterSvc, txm portsrepo.TransactionManager) portssvc.CycleSvcFacade {
	return &cycleServiceImpl{
		cycleRepo: cycleRepo,
		logRepo:   logRepo,
		ledger:    ledger,
		txm:       txm,
	}
}

// Ensure cycleServiceImpl implements the CycleSvcFacade interface
var _ portssvc.CycleSvcFacade = (*cycleServiceImpl)(nil)

func (s *cycleServiceImpl) CreateCycle(ctx context.Context, userID string, startDate time.Time, endDate *time.Time, periodLength *int) (*domain.Cycle, error) {
	if endDate != nil && endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
	}
	if periodLength != nil && *periodLength <= 0 {
		return nil, fmt.Errorf("%w: period length must be positive", apperrors.ErrValidation)
	}

	cycle := domain.Cycle{
		CycleID:      uuid.NewString(),
		UserID:       userID,
		StartDate:    startDate,
		EndDate:      endDate,
		PeriodLength: periodLength,
	}

	if err := s.cycleRepo.SaveCycle(ctx, cycle); err != nil {
		s.LogError(ctx, err, "Failed to save cycle", slog.String("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Cycle created", slog.String("cycle_id", cycle.CycleID))
	return &cycle, nil
}

func (s *cycleServiceImpl) GetUserCycles(ctx context.Context, userID string, limit int) ([]domain.Cycle, error) {
	cycles, err := s.cycleRepo.FindCyclesByUserID(ctx, userID, limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list cycles", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list cycles for user %s: %w", userID, err)
	}

	if cycles == nil {
		return []domain.Cycle{}, nil
	}
	return cycles, nil
}

// getOwnedCycle fetches a cycle and verifies ownership. A cycle that
// exists but belongs to another user is reported as not found.
func (s *cycleServiceImpl) getOwnedCycle(ctx context.Context, userID string, cycleID string) (*domain.Cycle, error) {
	cycle, err := s.cycleRepo.FindCycleByID(ctx, cycleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find cycle", slog.String("cycle_id", cycleID))
		}
		return nil, err
	}
	if cycle.UserID != userID {
		s.LogDebug(ctx, "Cycle found but belongs to different user",
			slog.String("cycle_id", cycleID))
		return nil, apperrors.ErrNotFound
	}
	return cycle, nil
}

func (s *cycleServiceImpl) GetCycleWithLogs(ctx context.Context, userID string, cycleID string) (*domain.Cycle, []domain.DailyLog, error) {
	cycle, err := s.getOwnedCycle(ctx, userID, cycleID)
	if err != nil {
		return nil, nil, err
	}

	logs, err := s.logRepo.FindLogsByCycleID(ctx, cycleID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find logs for cycle", slog.String("cycle_id", cycleID))
		return nil, nil, fmt.Errorf("failed to find logs for cycle %s: %w", cycleID, err)
	}
	if logs == nil {
		logs = []domain.DailyLog{}
	}

	return cycle, logs, nil
}

func (s *cycleServiceImpl) UpdateCycle(ctx context.Context, userID string, cycleID string, endDate *time.Time, periodLength *int) (*domain.Cycle, error) {
	cycle, err := s.getOwnedCycle(ctx, userID, cycleID)
	if err != nil {
		return nil, err
	}

	// Setting an end date on a cycle that had none completes it.
	completing := endDate != nil && cycle.EndDate == nil

	updated := false
	if endDate != nil {
		if endDate.Before(cycle.StartDate) {
			return nil, fmt.Errorf("%w: end date precedes start date", apperrors.ErrValidation)
		}
		cycle.EndDate = endDate
		updated = true
	}
	if periodLength != nil {
		if *periodLength <= 0 {
			return nil, fmt.Errorf("%w: period length must be positive", apperrors.ErrValidation)
		}
		cycle.PeriodLength = periodLength
		updated = true
	}
	if !updated {
		s.LogDebug(ctx, "No fields provided for cycle update", slog.String("cycle_id", cycleID))
		return cycle, nil
	}

	applyUpdate := func(ctx context.Context) error {
		if err := s.cycleRepo.UpdateCycle(ctx, *cycle); err != nil {
			return err
		}
		if completing {
			if _, err := s.ledger.AwardCycleCompletion(ctx, userID); err != nil {
				return fmt.Errorf("failed to credit cycle completion reward: %w", err)
			}
		}
		return nil
	}

	if completing {
		// The completion flag and its reward either both land or neither
		// does; a reward failure rolls the cycle update back.
		err = s.txm.WithTransaction(ctx, applyUpdate)
	} else {
		err = applyUpdate(ctx)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to update cycle", slog.String("cycle_id", cycleID))
		return nil, err
	}

	s.LogInfo(ctx, "Cycle updated", slog.String("cycle_id", cycleID))
	return cycle, nil
}

// CalculateStatistics derives the cycle statistics from the user's
// history. The pairwise cycle lengths walk consecutive completed cycles
// in newest-first order: the gap at index i is start[i] - start[i+1],
// so cycles are explicitly sorted by start_date descending in storage
// rather than relying on insertion order.
func (s *cycleServiceImpl) CalculateStatistics(ctx context.Context, userID string) (*domain.CycleStatistics, error) {
	cycles, err := s.GetUserCycles(ctx, userID, 0)
	if err != nil {
		return nil, err
	}

	stats := &domain.CycleStatistics{TotalCycles: len(cycles)}
	if len(cycles) < minCyclesForPrediction {
		return stats, nil
	}

	completed := make([]domain.Cycle, 0, len(cycles))
	for _, c := range cycles {
		if c.Completed() {
			completed = append(completed, c)
		}
	}
	if len(completed) == 0 {
		return stats, nil
	}

	var gapSum, gapCount int64
	for i := 0; i < len(completed)-1; i++ {
		newer := completed[i]
		older := completed[i+1]
		gapSum += daysBetween(older.StartDate, newer.StartDate)
		gapCount++
	}
	if gapCount > 0 {
		avg := decimal.NewFromInt(gapSum).Div(decimal.NewFromInt(gapCount)).Round(1)
		stats.AvgCycleLength = &avg
	}

	var periodSum, periodCount int64
	for _, c := range completed {
		if c.PeriodLength != nil {
			periodSum += int64(*c.PeriodLength)
			periodCount++
		}
	}
	if periodCount > 0 {
		avg := decimal.NewFromInt(periodSum).Div(decimal.NewFromInt(periodCount)).Round(1)
		stats.AvgPeriodLength = &avg
	}

	return stats, nil
}

// predictionBasis caps how many recent cycles a prediction is based
// on. The average itself still comes from the full completed history.
const predictionBasis = 3

// PredictNextCycle forecasts the next cycle start as the most recent
// start date plus the (truncated) average cycle length. The forecast
// considers only the predictionBasis most recent cycles. Returns
// (nil, nil) when fewer than two cycles exist or no average is
// derivable from the completed history.
func (s *cycleServiceImpl) PredictNextCycle(ctx context.Context, userID string) (*domain.CyclePrediction, error) {
	cycles, err := s.GetUserCycles(ctx, userID, predictionBasis)
	if err != nil {
		return nil, err
	}
	if len(cycles) < minCyclesForPrediction {
		return nil, nil
	}

	stats, err := s.CalculateStatistics(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stats.AvgCycleLength == nil {
		return nil, nil
	}

	confidence := domain.ConfidenceMedium
	if len(cycles) >= predictionBasis {
		confidence = domain.ConfidenceHigh
	}

	lastStart := cycles[0].StartDate
	predicted := lastStart.AddDate(0, 0, int(stats.AvgCycleLength.IntPart()))

	return &domain.CyclePrediction{
		PredictedStartDate: predicted,
		Confidence:         confidence,
		BasedOnCycles:      len(cycles),
	}, nil
}

func (s *cycleServiceImpl) AddDailyLog(ctx context.Context, userID string, cycleID string, logDate time.Time, selections map[string]any) (*domain.DailyLog, error) {
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: selections must not be empty", apperrors.ErrValidation)
	}

	// The cycle must exist and belong to the caller.
	if _, err := s.getOwnedCycle(ctx, userID, cycleID); err != nil {
		return nil, err
	}

	log := domain.DailyLog{
		LogID:      uuid.NewString(),
		UserID:     userID,
		CycleID:    cycleID,
		LogDate:    logDate,
		Selections: selections,
	}

	if err := s.logRepo.SaveDailyLog(ctx, log); err != nil {
		s.LogError(ctx, err, "Failed to save daily log",
			slog.String("cycle_id", cycleID))
		return nil, err
	}

	s.LogInfo(ctx, "Daily log created",
		slog.String("log_id", log.LogID),
		slog.String("cycle_id", cycleID))
	return &log, nil
}

// daysBetween returns the whole days from a to b, comparing calendar
// days in UTC.
func daysBetween(a, b time.Time) int64 {
	a = a.UTC().Truncate(24 * time.Hour)
	b = b.UTC().Truncate(24 * time.Hour)
	return int64(b.Sub(a).Hours() / 24)
}
