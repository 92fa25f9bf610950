package repositories

import (
	"context"
	"time"

	"github.com/petalhealth/petal_backend/internal/core/domain"
)

// ActivityReader defines read operations for activity logs.
type ActivityReader interface {
	// FindActivitiesByUserID retrieves a user's activities ordered by
	// performed_at descending with limit/offset pagination.
	FindActivitiesByUserID(ctx context.Context, userID string, limit int, offset int) ([]domain.ActivityLog, error)

	// FindActivitiesSince retrieves a user's activities performed at or
	// after the given time, newest first.
	FindActivitiesSince(ctx context.Context, userID string, since time.Time) ([]domain.ActivityLog, error)

	// CountActivitiesByUserID returns the total number of activities a
	// user has logged.
	CountActivitiesByUserID(ctx context.Context, userID string) (int, error)
}

// ActivityWriter defines write operations for activity logs.
type ActivityWriter interface {
	// SaveActivity persists a new activity log.
	SaveActivity(ctx context.Context, activity domain.ActivityLog) error
}

// ActivityRepositoryFacade combines all activity repository interfaces.
type ActivityRepositoryFacade interface {
	ActivityReader
	ActivityWriter
}
