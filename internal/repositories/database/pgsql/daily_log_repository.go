package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/petalhealth/petal_backend/internal/apperrors"
	"github.com/petalhealth/petal_backend/internal/core/domain"
	portsrepo "github.com/petalhealth/petal_backend/internal/core/ports/repositories"
)

// PgxDailyLogRepository persists per-day symptom logs. Selections are
// stored as jsonb.
type PgxDailyLogRepository struct {
	BaseRepository
}

// newPgxDailyLogRepository creates a new repository for daily log data.
func newPgxDailyLogRepository(base BaseRepository) portsrepo.DailyLogRepositoryFacade {
	return &PgxDailyLogRepository{BaseRepository: base}
}

// Ensure PgxDailyLogRepository implements the facade
var _ portsrepo.DailyLogRepositoryFacade = (*PgxDailyLogRepository)(nil)

// SaveDailyLog inserts a new daily log.
func (r *PgxDailyLogRepository) SaveDailyLog(ctx context.Context, log domain.DailyLog) error {
	selections, err := json.Marshal(log.Selections)
	if err != nil {
		return fmt.Errorf("failed to marshal selections for log %s: %w", log.LogID, err)
	}

	query := `
		INSERT INTO daily_logs (log_id, user_id, cycle_id, log_date, selections)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err = r.db(ctx).Exec(ctx, query,
		log.LogID,
		log.UserID,
		log.CycleID,
		log.LogDate,
		selections,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique violation
			return fmt.Errorf("%w: daily log with ID %s already exists", apperrors.ErrDuplicate, log.LogID)
		}
		return fmt.Errorf("failed to save daily log %s: %w", log.LogID, err)
	}
	return nil
}

// FindLogsByCycleID retrieves the daily logs of a cycle ordered by
// log_date ascending.
func (r *PgxDailyLogRepository) FindLogsByCycleID(ctx context.Context, cycleID string) ([]domain.DailyLog, error) {
	query := `
		SELECT log_id, user_id, cycle_id, log_date, selections
		FROM daily_logs
		WHERE cycle_id = $1
		ORDER BY log_date;
	`
	rows, err := r.db(ctx).Query(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily logs for cycle %s: %w", cycleID, err)
	}
	defer rows.Close()

	logs := []domain.DailyLog{}
	for rows.Next() {
		var log domain.DailyLog
		var selections []byte
		err := rows.Scan(
			&log.LogID,
			&log.UserID,
			&log.CycleID,
			&log.LogDate,
			&selections,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily log row: %w", err)
		}

		if len(selections) > 0 {
			if err := json.Unmarshal(selections, &log.Selections); err != nil {
				return nil, fmt.Errorf("failed to unmarshal selections for log %s: %w", log.LogID, err)
			}
		}
		logs = append(logs, log)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating daily log rows: %w", rows.Err())
	}
	return logs, nil
}
