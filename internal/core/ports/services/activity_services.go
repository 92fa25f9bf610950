package services

import (
	"context"
	"time"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// ActivitySvcFacade defines operations for logging and summarising
// activities. Logging an activity may credit the points ledger; the
// awarded amount is returned alongside the created record.
type ActivitySvcFacade interface {
	// LogActivity persists an activity and, when the computed reward is
	// positive, credits it to the user's ledger as activity_completion.
	LogActivity(ctx context.Context, userID string, activityType string, durationMin *int, exerciseRPE *int, notes string, performedAt time.Time) (*domain.ActivityLog, int64, error)

	// ListActivities retrieves a page of the user's activities, newest
	// first.
	ListActivities(ctx context.Context, userID string, page int, limit int) ([]domain.ActivityLog, error)

	// GetStatistics summarises the user's activities over the last 30
	// days.
	GetStatistics(ctx context.Context, userID string) (*domain.ActivityStatistics, error)
}
