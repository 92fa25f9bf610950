package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
	portssvc "github.com/petalhealth/petal_backend/internal/core/ports/services"
)

// statisticsWindow is how far back activity statistics look.
const statisticsWindow = 30 * 24 * time.Hour

// activityServiceImpl implements the ActivitySvcFacade interface. It
// owns activity persistence and calls one way into the ledger service
// to credit activity-completion rewards.
type activityServiceImpl struct {
	BaseService
	activityRepo portsrepo.ActivityRepositoryFacade
	ledger       portssvc.LedgerSvcFacade
	now          func() time.Time
}

// ActivityServiceOption is a functional option for configuring the activity service.
type ActivityServiceOption func(*activityServiceImpl)

// WithActivityClock overrides the clock used for the statistics window.
// Used in tests.
func WithActivityClock(now func() time.Time) ActivityServiceOption {
	return func(s *activityServiceImpl) {
		s.now = now
	}
}

// NewActivityService creates a new activity service.
func NewActivityService(activityRepo portsrepo.ActivityRepositoryFacade, ledger portssvc.LedgerSvcFacade, options ...ActivityServiceOption) portssvc.ActivitySvcFacade {
	svc := &activityServiceImpl{
		activityRepo: activityRepo,
		ledger:       ledger,
		now:          time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

// Ensure activityServiceImpl implements the ActivitySvcFacade interface
var _ portssvc.ActivitySvcFacade = (*activityServiceImpl)(nil)

func (s *activityServiceImpl) LogActivity(ctx context.Context, userID string, activityType string, durationMin *int, exerciseRPE *int, notes string, performedAt time.Time) (*domain.ActivityLog, int64, error) {
	// Compute the reward up front so validation failures (e.g. RPE out
	// of range) reject the whole request before anything is persisted.
	reward, err := s.ledger.CalculateActivityReward(activityType, durationMin, exerciseRPE)
	if err != nil {
		return nil, 0, err
	}

	if performedAt.IsZero() {
		performedAt = s.now().UTC()
	}

	activity := domain.ActivityLog{
		ActivityID:   uuid.NewString(),
		UserID:       userID,
		ActivityType: activityType,
		DurationMin:  durationMin,
		ExerciseRPE:  exerciseRPE,
		Notes:        notes,
		PerformedAt:  performedAt,
	}

	if err := s.activityRepo.SaveActivity(ctx, activity); err != nil {
		s.LogError(ctx, err, "Failed to save activity", slog.String("user_id", userID))
		return nil, 0, err
	}

	if reward > 0 {
		desc := fmt.Sprintf("Activity completed: %s", activityType)
		if _, err := s.ledger.AddTransaction(ctx, userID, reward, domain.KindActivityCompletion, desc); err != nil {
			// The activity is persisted; the reward append failed. Report
			// the failure rather than fabricating a granted reward.
			s.LogError(ctx, err, "Failed to credit activity reward",
				slog.String("activity_id", activity.ActivityID))
			return &activity, 0, fmt.Errorf("activity logged but reward failed: %w", err)
		}
	}

	s.LogInfo(ctx, "Activity logged",
		slog.String("activity_id", activity.ActivityID),
		slog.Int64("reward", reward))
	return &activity, reward, nil
}

func (s *activityServiceImpl) ListActivities(ctx context.Context, userID string, page int, limit int) ([]domain.ActivityLog, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	activities, err := s.activityRepo.FindActivitiesByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list activities", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list activities for user %s: %w", userID, err)
	}

	if activities == nil {
		return []domain.ActivityLog{}, nil
	}
	return activities, nil
}

func (s *activityServiceImpl) GetStatistics(ctx context.Context, userID string) (*domain.ActivityStatistics, error) {
	since := s.now().UTC().Add(-statisticsWindow)

	recent, err := s.activityRepo.FindActivitiesSince(ctx, userID, since)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch recent activities", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to fetch recent activities for user %s: %w", userID, err)
	}

	total, err := s.activityRepo.CountActivitiesByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to count activities", slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to count activities for user %s: %w", userID, err)
	}

	stats := &domain.ActivityStatistics{
		TotalActivities:     total,
		ActivitiesThisMonth: len(recent),
	}
	if len(recent) == 0 {
		return stats, nil
	}

	var durationSum, durationCount, rpeSum, rpeCount int
	typeCounts := make(map[string]int)
	for _, a := range recent {
		if a.DurationMin != nil {
			stats.TotalDuration += *a.DurationMin
			durationSum += *a.DurationMin
			durationCount++
		}
		if a.ExerciseRPE != nil {
			rpeSum += *a.ExerciseRPE
			rpeCount++
		}
		if a.ActivityType != "" {
			typeCounts[a.ActivityType]++
		}
	}

	if durationCount > 0 {
		stats.AvgDuration = roundTenth(float64(durationSum) / float64(durationCount))
	}
	if rpeCount > 0 {
		stats.AvgRPE = roundTenth(float64(rpeSum) / float64(rpeCount))
	}

	best := 0
	for activityType, count := range typeCounts {
		if count > best {
			best = count
			t := activityType
			stats.MostCommonActivity = &t
		}
	}

	return stats, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
