package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
)

// PgxActivityRepository persists activity logs.
type PgxActivityRepository struct {
	BaseRepository
}

// newPgxActivityRepository creates a new repository for activity data.
func newPgxActivityRepository(base BaseRepository) portsrepo.ActivityRepositoryFacade {
	return &PgxActivityRepository{BaseRepository: base}
}

// Ensure PgxActivityRepository implements the facade
var _ portsrepo.ActivityRepositoryFacade = (*PgxActivityRepository)(nil)

// SaveActivity inserts a new activity log.
func (r *PgxActivityRepository) SaveActivity(ctx context.Context, activity domain.ActivityLog) error {
	query := `
		INSERT INTO activity_logs (activity_id, user_id, activity_type, duration_min, exercise_rpe, notes, performed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	var notes sql.NullString
	if activity.Notes != "" {
		notes = sql.NullString{String: activity.Notes, Valid: true}
	}

	_, err := r.db(ctx).Exec(ctx, query,
		activity.ActivityID,
		activity.UserID,
		activity.ActivityType,
		activity.DurationMin,
		activity.ExerciseRPE,
		notes,
		activity.PerformedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: activity with ID %s already exists", apperrors.ErrDuplicate, activity.ActivityID)
		}
		return fmt.Errorf("failed to save activity %s: %w", activity.ActivityID, err)
	}
	return nil
}

// FindActivitiesByUserID retrieves a user's activities newest first.
func (r *PgxActivityRepository) FindActivitiesByUserID(ctx context.Context, userID string, limit int, offset int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT activity_id, user_id, activity_type, duration_min, exercise_rpe, notes, performed_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY performed_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db(ctx).Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectActivities(rows)
}

// FindActivitiesSince retrieves a user's activities performed at or
// after the given time, newest first.
func (r *PgxActivityRepository) FindActivitiesSince(ctx context.Context, userID string, since time.Time) ([]domain.ActivityLog, error) {
	query := `
		SELECT activity_id, user_id, activity_type, duration_min, exercise_rpe, notes, performed_at
		FROM activity_logs
		WHERE user_id = $1 AND performed_at >= $2
		ORDER BY performed_at DESC;
	`
	rows, err := r.db(ctx).Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activities for user %s: %w", userID, err)
	}
	defer rows.Close()

	return collectActivities(rows)
}

// CountActivitiesByUserID returns the user's total activity count.
func (r *PgxActivityRepository) CountActivitiesByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM activity_logs WHERE user_id = $1;`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activities for user %s: %w", userID, err)
	}
	return count, nil
}

func collectActivities(rows pgx.Rows) ([]domain.ActivityLog, error) {
	activities := []domain.ActivityLog{}
	for rows.Next() {
		var activity domain.ActivityLog
		var notes sql.NullString
		err := rows.Scan(
			&activity.ActivityID,
			&activity.UserID,
			&activity.ActivityType,
			&activity.DurationMin,
			&activity.ExerciseRPE,
			&notes,
			&activity.PerformedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}

		if notes.Valid {
			activity.Notes = notes.String
		}
		activities = append(activities, activity)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", rows.Err())
	}
	return activities, nil
}
